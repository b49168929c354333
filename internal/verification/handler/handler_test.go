package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	id "sisvita/pkg/domain"
	dErrors "sisvita/pkg/domain-errors"
	"sisvita/pkg/testutil"
)

type stubService struct {
	userID id.UserID
	err    error
}

func (s *stubService) Confirm(_ context.Context, _ string) (id.UserID, error) {
	return s.userID, s.err
}

func newRouter(svc Service) chi.Router {
	router := chi.NewRouter()
	New(svc, slog.Default()).Register(router)
	return router
}

func post(router chi.Router, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/verifications/confirm", bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestConfirmEndpoint(t *testing.T) {
	testutil.Given(t, "the confirmation endpoint", func(t *testing.T) {
		testutil.When(t, "the token is valid", func(t *testing.T) {
			router := newRouter(&stubService{userID: id.NewUserID()})
			rec := post(router, `{"token":"valid-token"}`)

			testutil.Then(t, "it should respond 200", func(t *testing.T) {
				if rec.Code != http.StatusOK {
					t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
				}
			})
		})

		testutil.When(t, "the token is rejected", func(t *testing.T) {
			router := newRouter(&stubService{err: dErrors.New(dErrors.CodeUnauthorized, "invalid token")})
			rec := post(router, `{"token":"bad-token"}`)

			testutil.Then(t, "it should respond 401", func(t *testing.T) {
				if rec.Code != http.StatusUnauthorized {
					t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
				}
			})
		})

		testutil.When(t, "the token field is missing", func(t *testing.T) {
			router := newRouter(&stubService{})
			rec := post(router, `{}`)

			testutil.Then(t, "it should respond 400", func(t *testing.T) {
				if rec.Code != http.StatusBadRequest {
					t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
				}
			})
		})
	})
}
