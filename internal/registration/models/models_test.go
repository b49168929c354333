package models

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "sisvita/pkg/domain-errors"
	"sisvita/pkg/requestcontext"
)

type RequestSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *RequestSuite) SetupTest() {
	// Pin "now" so the age gate is deterministic.
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), now)
}

func TestRequestSuite(t *testing.T) {
	suite.Run(t, new(RequestSuite))
}

func validRequest() Request {
	return Request{
		Email:          "u@x.com",
		Password:       "Abc12345",
		FirstName:      "Ana",
		LastName:       "Diaz",
		DocumentType:   "DNI",
		DocumentNumber: "12345678",
		Gender:         "Femenino",
		BirthDate:      "1990-05-01",
	}
}

func (s *RequestSuite) TestRequiredFields() {
	clear := map[string]func(*Request){
		"email":          func(r *Request) { r.Email = "" },
		"password":       func(r *Request) { r.Password = "" },
		"firstName":      func(r *Request) { r.FirstName = "" },
		"lastName":       func(r *Request) { r.LastName = "" },
		"documentType":   func(r *Request) { r.DocumentType = "" },
		"documentNumber": func(r *Request) { r.DocumentNumber = "" },
		"gender":         func(r *Request) { r.Gender = "" },
		"birthDate":      func(r *Request) { r.BirthDate = "" },
	}

	for field, blank := range clear {
		s.Run("rejects missing "+field, func() {
			req := validRequest()
			blank(&req)
			err := req.Validate(s.ctx)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}

	s.Run("accepts a payload with all required fields", func() {
		req := validRequest()
		s.NoError(req.Validate(s.ctx))
	})

	s.Run("optional fields may stay empty", func() {
		req := validRequest()
		req.MiddleName = ""
		req.Phone = ""
		req.Location = ""
		s.NoError(req.Validate(s.ctx))
	})
}

func (s *RequestSuite) TestEmailFormat() {
	s.Run("accepts a@b.com", func() {
		req := validRequest()
		req.Email = "a@b.com"
		s.NoError(req.Validate(s.ctx))
	})

	s.Run("rejects not-an-email", func() {
		req := validRequest()
		req.Email = "not-an-email"
		err := req.Validate(s.ctx)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *RequestSuite) TestAgeGate() {
	ctx := requestcontext.WithTime(context.Background(),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	s.Run("accepts an applicant turning 18 this year", func() {
		req := validRequest()
		req.BirthDate = "2006-12-31"
		s.NoError(req.Validate(ctx))
	})

	s.Run("rejects a 14-year-old", func() {
		req := validRequest()
		req.BirthDate = "2010-01-01"
		err := req.Validate(ctx)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects an unparseable birth date", func() {
		req := validRequest()
		req.BirthDate = "01/05/1990"
		err := req.Validate(ctx)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *RequestSuite) TestNormalize() {
	req := Request{
		Email:     "  u@x.com ",
		Password:  "  spaces kept  ",
		FirstName: " Ana ",
		LastName:  " Diaz ",
	}
	req.Normalize()

	s.Equal("u@x.com", req.Email)
	s.Equal("  spaces kept  ", req.Password)
	s.Equal("Ana", req.FirstName)
	s.Equal("Ana Diaz", req.DisplayName())
}
