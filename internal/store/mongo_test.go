package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/shalabh-srivastava/legalsuite/internal/models"
)

func TestMongoStoreResearch(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("insert", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		rec := &models.ResearchRecord{
			ResearchResult: models.ResearchResult{ID: "r1", Query: "q", CreatedAt: time.Now()},
			FirmID:         "F1",
			UserID:         "U1",
		}
		require.NoError(mt, s.InsertResearch(ctx, rec))

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "r1", cmd.Lookup("documents", "0", "_id").StringValue())
		assert.Equal(mt, "F1", cmd.Lookup("documents", "0", "law_firm_id").StringValue())
		assert.Equal(mt, "q", cmd.Lookup("documents", "0", "query").StringValue())
	})

	mt.Run("insert failure", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		err := s.InsertResearch(ctx, &models.ResearchRecord{ResearchResult: models.ResearchResult{ID: "r1"}})
		assert.Error(mt, err)
	})

	mt.Run("list by firm", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		ns := mt.DB.Name() + "." + ResearchCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "r2"}, {Key: "query", Value: "second"}, {Key: "law_firm_id", Value: "F1"}},
			bson.D{{Key: "_id", Value: "r1"}, {Key: "query", Value: "first"}, {Key: "law_firm_id", Value: "F1"}},
		))

		recs, err := s.ListResearchByFirm(ctx, "F1", 100)
		require.NoError(mt, err)
		require.Len(mt, recs, 2)
		assert.Equal(mt, "r2", recs[0].ID)
		assert.Equal(mt, "second", recs[0].Query)
		assert.Equal(mt, "F1", recs[1].FirmID)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "F1", cmd.Lookup("filter", "law_firm_id").StringValue())
		assert.Equal(mt, int64(100), cmd.Lookup("limit").Int64())
	})

	mt.Run("get missing", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		ns := mt.DB.Name() + "." + ResearchCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := s.GetResearch(ctx, "nope")
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoStoreCases(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("update sets only given fields", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: "c1"},
			{Key: "case_title", Value: "State v. Rao"},
			{Key: "status", Value: models.CaseClosed},
		}}))

		status := models.CaseClosed
		now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		c, err := s.UpdateCase(ctx, "c1", models.CaseUpdate{Status: &status}, now)
		require.NoError(mt, err)
		assert.Equal(mt, models.CaseClosed, c.Status)
		assert.Equal(mt, "State v. Rao", c.CaseTitle)

		cmd := mt.GetStartedEvent().Command
		set := cmd.Lookup("update", "$set").Document()
		assert.Equal(mt, models.CaseClosed, set.Lookup("status").StringValue())
		_, err = set.LookupErr("case_title")
		assert.Error(mt, err, "nil fields must not be written")
		_, err = set.LookupErr("updated_at")
		assert.NoError(mt, err)
	})

	mt.Run("update missing", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		title := "x"
		_, err := s.UpdateCase(ctx, "nope", models.CaseUpdate{CaseTitle: &title}, time.Now())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("list by firm", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		ns := mt.DB.Name() + "." + CasesCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "c1"}, {Key: "law_firm_id", Value: "F1"}, {Key: "case_number", Value: "CR-1"}},
		))

		cases, err := s.ListCasesByFirm(ctx, "F1")
		require.NoError(mt, err)
		require.Len(mt, cases, 1)
		assert.Equal(mt, "CR-1", cases[0].CaseNumber)
	})
}

func TestMongoStoreDocuments(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("get", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		ns := mt.DB.Name() + "." + DocumentsCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "d1"}, {Key: "document_name", Value: "plaint.pdf"}, {Key: "object_key", Value: "F1/d1/plaint.pdf"}},
		))

		doc, err := s.GetDocument(ctx, "d1")
		require.NoError(mt, err)
		assert.Equal(mt, "plaint.pdf", doc.DocumentName)
		assert.Equal(mt, "F1/d1/plaint.pdf", doc.ObjectKey)
	})
}
