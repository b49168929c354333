//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sisvita/internal/identity"
	id "sisvita/pkg/domain"
	"sisvita/pkg/platform/sentinel"
	"sisvita/pkg/testutil/containers"
)

type IdentityStoreIntegrationSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *Store
	ctx   context.Context
}

func TestIdentityStoreIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(IdentityStoreIntegrationSuite))
}

func (s *IdentityStoreIntegrationSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = New(s.pg.DB)
	s.ctx = context.Background()
}

func (s *IdentityStoreIntegrationSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(s.ctx, "identities"))
}

func (s *IdentityStoreIntegrationSuite) newIdentity(email string) *identity.Identity {
	return &identity.Identity{
		ID:           id.NewUserID(),
		Email:        email,
		PasswordHash: "$2a$10$integrationhash",
		DisplayName:  "Ana Diaz",
		Active:       true,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *IdentityStoreIntegrationSuite) TestRoundTrip() {
	ident := s.newIdentity("ana@example.com")
	s.Require().NoError(s.store.Create(s.ctx, ident))

	found, err := s.store.FindByID(s.ctx, ident.ID)
	s.Require().NoError(err)
	s.Equal(ident.Email, found.Email)
	s.Equal(ident.PasswordHash, found.PasswordHash)
	s.True(found.Active)
	s.False(found.EmailVerified)

	byEmail, err := s.store.FindByEmail(s.ctx, "ANA@example.com")
	s.Require().NoError(err)
	s.Equal(ident.ID, byEmail.ID)
}

func (s *IdentityStoreIntegrationSuite) TestEmailUniquenessIsCaseInsensitive() {
	s.Require().NoError(s.store.Create(s.ctx, s.newIdentity("Dup@Example.com")))

	err := s.store.Create(s.ctx, s.newIdentity("dup@example.com"))
	s.Require().Error(err)
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}

func (s *IdentityStoreIntegrationSuite) TestDeleteFreesEmail() {
	ident := s.newIdentity("gone@example.com")
	s.Require().NoError(s.store.Create(s.ctx, ident))
	s.Require().NoError(s.store.Delete(s.ctx, ident.ID))

	_, err := s.store.FindByID(s.ctx, ident.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.NoError(s.store.Create(s.ctx, s.newIdentity("gone@example.com")))
}

func (s *IdentityStoreIntegrationSuite) TestSetEmailVerified() {
	ident := s.newIdentity("verify@example.com")
	s.Require().NoError(s.store.Create(s.ctx, ident))
	s.Require().NoError(s.store.SetEmailVerified(s.ctx, ident.ID))

	found, err := s.store.FindByID(s.ctx, ident.ID)
	s.Require().NoError(err)
	s.True(found.EmailVerified)
}
