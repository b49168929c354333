package models

import (
	"context"
	"strings"
	"time"

	id "sisvita/pkg/domain"
	dErrors "sisvita/pkg/domain-errors"
	"sisvita/pkg/email"
	"sisvita/pkg/requestcontext"
)

const (
	birthDateLayout = "2006-01-02"
	minimumAge      = 18
)

// Request is the registration payload. Location uses the description
// string the mobile client sends; resolution to catalog IDs happens
// later and is best-effort.
type Request struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	MiddleName     string `json:"middleName,omitempty"`
	DocumentType   string `json:"documentType"`
	DocumentNumber string `json:"documentNumber"`
	Gender         string `json:"gender"`
	BirthDate      string `json:"birthDate"`
	Phone          string `json:"phone,omitempty"`
	Location       string `json:"ubicacion,omitempty"`
}

// Normalize trims whitespace on every field except the password.
func (r *Request) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.MiddleName = strings.TrimSpace(r.MiddleName)
	r.DocumentType = strings.TrimSpace(r.DocumentType)
	r.DocumentNumber = strings.TrimSpace(r.DocumentNumber)
	r.Gender = strings.TrimSpace(r.Gender)
	r.BirthDate = strings.TrimSpace(r.BirthDate)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Location = strings.TrimSpace(r.Location)
}

// Validate checks the payload before any external effect. The age gate
// compares calendar years only; a registrant turning 18 later this
// year still passes.
func (r *Request) Validate(ctx context.Context) error {
	for field, value := range map[string]string{
		"email":          r.Email,
		"password":       r.Password,
		"firstName":      r.FirstName,
		"lastName":       r.LastName,
		"documentType":   r.DocumentType,
		"documentNumber": r.DocumentNumber,
		"gender":         r.Gender,
		"birthDate":      r.BirthDate,
	} {
		if value == "" {
			return dErrors.New(dErrors.CodeValidation, field+" is required")
		}
	}

	if !email.Valid(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "email format is invalid")
	}

	birthDate, err := r.ParsedBirthDate()
	if err != nil {
		return err
	}
	if requestcontext.Now(ctx).Year()-birthDate.Year() < minimumAge {
		return dErrors.New(dErrors.CodeValidation, "registrant must be at least 18 years old")
	}
	return nil
}

// ParsedBirthDate parses the birth date field.
func (r *Request) ParsedBirthDate() (time.Time, error) {
	birthDate, err := time.Parse(birthDateLayout, r.BirthDate)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, "birthDate must be a valid YYYY-MM-DD date")
	}
	return birthDate, nil
}

// DisplayName builds the identity display name from the name fields.
func (r *Request) DisplayName() string {
	return email.DisplayName(r.FirstName, r.LastName)
}

// Person is the profile record, keyed 1:1 by the owning identity's ID.
// Catalog references are nil when the description could not be
// resolved; registration never fails on a missing reference.
type Person struct {
	ID             id.UserID
	FirstName      string
	LastName       string
	MiddleName     *string
	BirthDate      time.Time
	Phone          *string
	Email          string
	DocumentNumber string
	GenderID       *id.CatalogID
	DocumentTypeID *id.CatalogID
	LocationID     *id.CatalogID
	Active         bool
	CreatedAt      time.Time
}

// UserAccount links a Person to its user type and account flags.
// PersonID always equals ID; the redundancy is kept for query paths
// that join on either column.
type UserAccount struct {
	ID            id.UserID
	PersonID      id.UserID
	UserTypeID    *id.CatalogID
	EmailVerified bool
	Active        bool
	CreatedAt     time.Time
}

// Result is the success outcome of a registration.
type Result struct {
	UserID  id.UserID
	Message string
}
