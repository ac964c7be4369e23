package models

import "time"

// Firm represents a row in the PostgreSQL law_firms table.
type Firm struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	ContactEmail string    `json:"contact_email"`
	ContactPhone string    `json:"contact_phone"`
	CreatedAt    time.Time `json:"created_at"`
}

// User represents a staff member in the PostgreSQL users table.
type User struct {
	ID                 string    `json:"id"`
	FirmID             string    `json:"law_firm_id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Role               string    `json:"role"` // partner, associate, paralegal, client
	BarAdmissionNumber string    `json:"bar_admission_number,omitempty"`
	Specialization     string    `json:"specialization,omitempty"`
	Password           string    `json:"-"` // never serialize
	CreatedAt          time.Time `json:"created_at"`
}

// FirmCreate is the JSON body for POST /api/law-firms.
type FirmCreate struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}

// UserCreate is the JSON body for POST /api/users.
type UserCreate struct {
	FirmID             string `json:"law_firm_id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	BarAdmissionNumber string `json:"bar_admission_number"`
	Specialization     string `json:"specialization"`
	Password           string `json:"password"`
}

// LoginRequest is the JSON body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
