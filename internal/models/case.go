package models

import "time"

// Case status values.
const (
	CaseActive  = "active"
	CaseClosed  = "closed"
	CasePending = "pending"
)

// Case is a matter handled by a firm, stored in MongoDB.
type Case struct {
	ID                string     `json:"id"                 bson:"_id"`
	FirmID            string     `json:"law_firm_id"        bson:"law_firm_id"`
	CaseNumber        string     `json:"case_number"        bson:"case_number"`
	CaseTitle         string     `json:"case_title"         bson:"case_title"`
	CaseType          string     `json:"case_type"          bson:"case_type"`
	CourtJurisdiction string     `json:"court_jurisdiction" bson:"court_jurisdiction"`
	FilingDate        *time.Time `json:"filing_date"        bson:"filing_date,omitempty"`
	Status            string     `json:"status"             bson:"status"`
	AssignedAttorney  string     `json:"assigned_attorney"  bson:"assigned_attorney"`
	ClientName        string     `json:"client_name"        bson:"client_name"`
	Description       string     `json:"description"        bson:"description"`
	CreatedAt         time.Time  `json:"created_at"         bson:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"         bson:"updated_at"`
}

// CaseCreate is the JSON body for POST /api/cases.
type CaseCreate struct {
	FirmID            string     `json:"law_firm_id"`
	CaseNumber        string     `json:"case_number"`
	CaseTitle         string     `json:"case_title"`
	CaseType          string     `json:"case_type"`
	CourtJurisdiction string     `json:"court_jurisdiction"`
	FilingDate        *time.Time `json:"filing_date"`
	AssignedAttorney  string     `json:"assigned_attorney"`
	ClientName        string     `json:"client_name"`
	Description       string     `json:"description"`
}

// CaseUpdate is the JSON body for PUT /api/cases/{id}. Nil fields are left
// unchanged.
type CaseUpdate struct {
	CaseTitle         *string    `json:"case_title"         bson:"case_title,omitempty"`
	CaseType          *string    `json:"case_type"          bson:"case_type,omitempty"`
	CourtJurisdiction *string    `json:"court_jurisdiction" bson:"court_jurisdiction,omitempty"`
	FilingDate        *time.Time `json:"filing_date"        bson:"filing_date,omitempty"`
	Status            *string    `json:"status"             bson:"status,omitempty"`
	AssignedAttorney  *string    `json:"assigned_attorney"  bson:"assigned_attorney,omitempty"`
	ClientName        *string    `json:"client_name"        bson:"client_name,omitempty"`
	Description       *string    `json:"description"        bson:"description,omitempty"`
}
