package authn

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sisvita/internal/identity"
	identitymemory "sisvita/internal/identity/store/memory"
	jwttoken "sisvita/internal/jwt_token"
	"sisvita/internal/registration/models"
	profilememory "sisvita/internal/registration/store/memory"
	id "sisvita/pkg/domain"
	dErrors "sisvita/pkg/domain-errors"
)

type LoginSuite struct {
	suite.Suite
	identities *identity.Provider
	profiles   *profilememory.InMemoryStore
	tokens     *jwttoken.JWTService
	ctx        context.Context
	userID     id.UserID
}

func (s *LoginSuite) SetupTest() {
	s.ctx = context.Background()
	s.identities = identity.NewProvider(identitymemory.New())
	s.profiles = profilememory.New()
	s.tokens = jwttoken.NewJWTService("test-signing-key", "test-issuer")

	userID, err := s.identities.Create(s.ctx, "u@x.com", "Abc12345", "Ana Diaz")
	s.Require().NoError(err)
	s.userID = userID

	now := time.Now()
	s.Require().NoError(s.profiles.CreatePair(s.ctx,
		&models.Person{ID: userID, FirstName: "Ana", LastName: "Diaz", Email: "u@x.com", Active: true, CreatedAt: now},
		&models.UserAccount{ID: userID, PersonID: userID, Active: true, CreatedAt: now},
	))
}

func TestLoginSuite(t *testing.T) {
	suite.Run(t, new(LoginSuite))
}

func (s *LoginSuite) newService(opts ...Option) *Service {
	return New(s.identities, s.profiles, s.tokens, time.Hour, opts...)
}

func (s *LoginSuite) TestSuccessfulLogin() {
	result, err := s.newService().Login(s.ctx, "u@x.com", "Abc12345")
	s.Require().NoError(err)
	s.Equal(s.userID, result.UserID)
	s.False(result.EmailVerified)

	// The minted token round-trips as an access token.
	extracted, err := s.tokens.ExtractUserID(result.AccessToken, jwttoken.PurposeAccess)
	s.Require().NoError(err)
	s.Equal(s.userID, extracted)
}

func (s *LoginSuite) TestWrongPasswordIsUnauthorized() {
	_, err := s.newService().Login(s.ctx, "u@x.com", "wrong-pass1")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *LoginSuite) TestUnknownEmailIsIndistinguishableFromWrongPassword() {
	_, errUnknown := s.newService().Login(s.ctx, "ghost@x.com", "Abc12345")
	_, errWrong := s.newService().Login(s.ctx, "u@x.com", "wrong-pass1")
	s.Require().Error(errUnknown)
	s.Require().Error(errWrong)
	s.Equal(errWrong.Error(), errUnknown.Error())
}

func (s *LoginSuite) TestMissingFieldsAreRejected() {
	_, err := s.newService().Login(s.ctx, "", "Abc12345")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *LoginSuite) TestUnverifiedAccountBlockedWhenRequired() {
	service := s.newService(WithRequireVerified(true))

	_, err := service.Login(s.ctx, "u@x.com", "Abc12345")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	// Verification unblocks the login.
	s.Require().NoError(s.profiles.SetEmailVerified(s.ctx, s.userID))
	result, err := service.Login(s.ctx, "u@x.com", "Abc12345")
	s.Require().NoError(err)
	s.True(result.EmailVerified)
}
