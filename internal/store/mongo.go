package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shalabh-srivastava/legalsuite/internal/models"
)

// ErrNotFound is returned when a lookup by id matches nothing.
var ErrNotFound = errors.New("not found")

// Collection names.
const (
	ResearchCollection  = "research_results"
	CasesCollection     = "cases"
	DocumentsCollection = "legal_documents"
)

// MongoStore persists research records, cases and document metadata.
type MongoStore struct {
	db        *mongo.Database
	research  *mongo.Collection
	cases     *mongo.Collection
	documents *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		db:        db,
		research:  db.Collection(ResearchCollection),
		cases:     db.Collection(CasesCollection),
		documents: db.Collection(DocumentsCollection),
	}
}

// Ping checks that the server is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

// EnsureIndexes creates the per-firm listing indexes.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	byFirm := mongo.IndexModel{Keys: bson.D{{Key: "law_firm_id", Value: 1}, {Key: "created_at", Value: -1}}}
	for _, col := range []*mongo.Collection{s.research, s.cases, s.documents} {
		if _, err := col.Indexes().CreateOne(ctx, byFirm); err != nil {
			return fmt.Errorf("index %s: %w", col.Name(), err)
		}
	}
	return nil
}

// ── Research ──────────────────────────────────────────────

func (s *MongoStore) InsertResearch(ctx context.Context, rec *models.ResearchRecord) error {
	if _, err := s.research.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("mongo insert research: %w", err)
	}
	return nil
}

// ListResearchByFirm returns up to limit records for the firm, newest first.
func (s *MongoStore) ListResearchByFirm(ctx context.Context, firmID string, limit int) ([]models.ResearchRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	var recs []models.ResearchRecord
	if err := s.findAll(ctx, s.research, bson.M{"law_firm_id": firmID}, opts, &recs); err != nil {
		return nil, fmt.Errorf("mongo list research: %w", err)
	}
	return recs, nil
}

func (s *MongoStore) GetResearch(ctx context.Context, id string) (*models.ResearchRecord, error) {
	var rec models.ResearchRecord
	if err := findByID(ctx, s.research, id, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ── Cases ─────────────────────────────────────────────────

func (s *MongoStore) CreateCase(ctx context.Context, c *models.Case) error {
	if _, err := s.cases.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("mongo insert case: %w", err)
	}
	return nil
}

func (s *MongoStore) ListCasesByFirm(ctx context.Context, firmID string) ([]models.Case, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var cases []models.Case
	if err := s.findAll(ctx, s.cases, bson.M{"law_firm_id": firmID}, opts, &cases); err != nil {
		return nil, fmt.Errorf("mongo list cases: %w", err)
	}
	return cases, nil
}

func (s *MongoStore) GetCase(ctx context.Context, id string) (*models.Case, error) {
	var c models.Case
	if err := findByID(ctx, s.cases, id, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCase applies the non-nil fields of upd, stamps updated_at and
// returns the updated case.
func (s *MongoStore) UpdateCase(ctx context.Context, id string, upd models.CaseUpdate, now time.Time) (*models.Case, error) {
	raw, err := bson.Marshal(upd)
	if err != nil {
		return nil, fmt.Errorf("encoding case update: %w", err)
	}
	set := bson.M{}
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("encoding case update: %w", err)
	}
	set["updated_at"] = now

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.Case
	err = s.cases.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo update case: %w", err)
	}
	return &c, nil
}

// ── Documents ─────────────────────────────────────────────

func (s *MongoStore) InsertDocument(ctx context.Context, doc *models.LegalDocument) error {
	if _, err := s.documents.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongo insert document: %w", err)
	}
	return nil
}

func (s *MongoStore) ListDocumentsByFirm(ctx context.Context, firmID string) ([]models.LegalDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var docs []models.LegalDocument
	if err := s.findAll(ctx, s.documents, bson.M{"law_firm_id": firmID}, opts, &docs); err != nil {
		return nil, fmt.Errorf("mongo list documents: %w", err)
	}
	return docs, nil
}

func (s *MongoStore) GetDocument(ctx context.Context, id string) (*models.LegalDocument, error) {
	var doc models.LegalDocument
	if err := findByID(ctx, s.documents, id, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *MongoStore) findAll(ctx context.Context, col *mongo.Collection, filter any, opts *options.FindOptions, out any) error {
	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	return cur.All(ctx, out)
}

func findByID(ctx context.Context, col *mongo.Collection, id string, out any) error {
	err := col.FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("mongo find %s: %w", col.Name(), err)
	}
	return nil
}
