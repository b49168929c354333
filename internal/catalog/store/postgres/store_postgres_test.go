package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"sisvita/internal/catalog"
	"sisvita/pkg/platform/sentinel"
)

type CatalogStoreSuite struct {
	suite.Suite
	mock  sqlmock.Sqlmock
	store *Store
	ctx   context.Context
}

func (s *CatalogStoreSuite) SetupTest() {
	db, mock, err := sqlmock.New()
	s.Require().NoError(err)
	s.mock = mock
	s.store = New(db)
	s.ctx = context.Background()
}

func (s *CatalogStoreSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestCatalogStoreSuite(t *testing.T) {
	suite.Run(t, new(CatalogStoreSuite))
}

func (s *CatalogStoreSuite) TestFindIDByDescription() {
	s.Run("resolves a description within its kind", func() {
		rawID := uuid.New()
		s.mock.ExpectQuery(regexp.QuoteMeta("FROM catalog_entries")).
			WithArgs("user_type", "Patient").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(rawID))

		found, err := s.store.FindIDByDescription(s.ctx, catalog.KindUserType, "Patient")
		s.Require().NoError(err)
		s.Equal(rawID.String(), found.String())
	})

	s.Run("reports ErrNotFound on a miss", func() {
		s.mock.ExpectQuery(regexp.QuoteMeta("FROM catalog_entries")).
			WithArgs("gender", "Unknown").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := s.store.FindIDByDescription(s.ctx, catalog.KindGender, "Unknown")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}
