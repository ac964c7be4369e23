package models

import "time"

// CaseLawHit is one normalized result from the case-law search service.
type CaseLawHit struct {
	Title    string `json:"title"    bson:"title"`
	Court    string `json:"court"    bson:"court"`
	Date     string `json:"date"     bson:"date"`
	Citation string `json:"citation" bson:"citation"`
	Summary  string `json:"summary"  bson:"summary"`
	URL      string `json:"url"      bson:"url"`
}

// ResearchQuery is the JSON body for POST /api/legal-research.
type ResearchQuery struct {
	Query  string `json:"query"`
	FirmID string `json:"law_firm_id"`
	CaseID string `json:"case_id,omitempty"`
	UserID string `json:"user_id"`
}

// ResearchResult is the research artifact returned to the caller.
type ResearchResult struct {
	ID                 string       `json:"id"                bson:"_id"`
	Query              string       `json:"query"             bson:"query"`
	AIResponse         string       `json:"ai_response"       bson:"ai_response"`
	CaseLawHits        []CaseLawHit `json:"case_law_results"  bson:"case_law_results"`
	RelevantCaseTitles []string     `json:"relevant_cases"    bson:"relevant_cases"`
	LegalAuthorities   []string     `json:"legal_authorities" bson:"legal_authorities"`
	CreatedAt          time.Time    `json:"created_at"        bson:"created_at"`
}

// ResearchRecord is a ResearchResult as stored in MongoDB, stamped with the
// scoping identifiers of the request that produced it.
type ResearchRecord struct {
	ResearchResult `bson:",inline"`

	FirmID string `json:"law_firm_id" bson:"law_firm_id"`
	UserID string `json:"user_id"     bson:"user_id"`
	CaseID string `json:"case_id"     bson:"case_id"`
}
