package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"sisvita/internal/catalog"
	catalogmemory "sisvita/internal/catalog/store/memory"
	"sisvita/internal/identity"
	identitymemory "sisvita/internal/identity/store/memory"
	"sisvita/internal/registration/service"
	profilememory "sisvita/internal/registration/store/memory"
	id "sisvita/pkg/domain"
)

// sinkSender records verification requests without sending anything.
type sinkSender struct {
	sent []string
}

func (s *sinkSender) SendVerificationLink(_ context.Context, _ id.UserID, email string) {
	s.sent = append(s.sent, email)
}

type RegistrationHandlerSuite struct {
	suite.Suite
	router   chi.Router
	profiles *profilememory.InMemoryStore
	sender   *sinkSender
}

func (s *RegistrationHandlerSuite) SetupTest() {
	identities := identity.NewProvider(identitymemory.New())
	catalogs := catalogmemory.NewSeeded(catalog.SeedEntries())
	s.profiles = profilememory.New()
	s.sender = &sinkSender{}

	svc := service.New(identities, catalogs, s.profiles, s.sender)
	h := New(svc, slog.Default())

	s.router = chi.NewRouter()
	h.Register(s.router)
}

func TestRegistrationHandlerSuite(t *testing.T) {
	suite.Run(t, new(RegistrationHandlerSuite))
}

func (s *RegistrationHandlerSuite) post(payload map[string]any) *httptest.ResponseRecorder {
	body, err := json.Marshal(payload)
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, "/v1/registrations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func validPayload() map[string]any {
	return map[string]any{
		"email":          "u@x.com",
		"password":       "Abc12345",
		"firstName":      "Ana",
		"lastName":       "Diaz",
		"documentType":   "DNI",
		"documentNumber": "12345678",
		"gender":         "Femenino",
		"birthDate":      "1990-05-01",
	}
}

func (s *RegistrationHandlerSuite) TestSuccessfulRegistration() {
	rec := s.post(validPayload())
	s.Require().Equal(http.StatusCreated, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		UserID  string `json:"user_id"`
		Message string `json:"message"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.True(resp.Success)
	s.NotEmpty(resp.Message)

	userID, err := id.ParseUserID(resp.UserID)
	s.Require().NoError(err)

	person, err := s.profiles.FindPerson(context.Background(), userID)
	s.Require().NoError(err)
	s.Equal("u@x.com", person.Email)
	s.NotNil(person.GenderID)
	s.NotNil(person.DocumentTypeID)

	account, err := s.profiles.FindAccount(context.Background(), userID)
	s.Require().NoError(err)
	s.Equal(userID, account.PersonID)
	s.False(account.EmailVerified)
	s.True(account.Active)
	s.NotNil(account.UserTypeID)

	s.Equal([]string{"u@x.com"}, s.sender.sent)
}

func (s *RegistrationHandlerSuite) TestValidationErrorReturns400() {
	payload := validPayload()
	payload["email"] = "not-an-email"

	rec := s.post(payload)
	s.Equal(http.StatusBadRequest, rec.Code)

	var resp map[string]string
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.NotEmpty(resp["error"])
}

func (s *RegistrationHandlerSuite) TestDuplicateEmailReturns409() {
	s.Require().Equal(http.StatusCreated, s.post(validPayload()).Code)

	rec := s.post(validPayload())
	s.Equal(http.StatusConflict, rec.Code)
	// Exactly one profile pair survives the duplicate attempt.
	s.Equal(1, s.profiles.Count())
}

func (s *RegistrationHandlerSuite) TestMalformedBodyReturns400() {
	req := httptest.NewRequest(http.MethodPost, "/v1/registrations", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}
