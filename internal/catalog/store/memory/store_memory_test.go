package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"sisvita/internal/catalog"
	id "sisvita/pkg/domain"
	"sisvita/pkg/platform/sentinel"
)

type CatalogStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *CatalogStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
}

func TestCatalogStoreSuite(t *testing.T) {
	suite.Run(t, new(CatalogStoreSuite))
}

func (s *CatalogStoreSuite) TestFindIDByDescription() {
	patientID := id.NewCatalogID()
	s.store.Put(catalog.Entry{ID: patientID, Kind: catalog.KindUserType, Description: "Patient"})

	s.Run("finds a seeded entry", func() {
		found, err := s.store.FindIDByDescription(s.ctx, catalog.KindUserType, "Patient")
		s.Require().NoError(err)
		s.Equal(patientID, found)
	})

	s.Run("matches case-insensitively", func() {
		found, err := s.store.FindIDByDescription(s.ctx, catalog.KindUserType, "patient")
		s.Require().NoError(err)
		s.Equal(patientID, found)
	})

	s.Run("scopes descriptions to their kind", func() {
		_, err := s.store.FindIDByDescription(s.ctx, catalog.KindGender, "Patient")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("reports ErrNotFound for unknown descriptions", func() {
		_, err := s.store.FindIDByDescription(s.ctx, catalog.KindLocation, "Atlantis")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *CatalogStoreSuite) TestSeedEntries() {
	store := NewSeeded(catalog.SeedEntries())

	for _, tc := range []struct {
		kind        catalog.Kind
		description string
	}{
		{catalog.KindUserType, "Patient"},
		{catalog.KindGender, "Femenino"},
		{catalog.KindDocumentType, "DNI"},
		{catalog.KindLocation, "Lima"},
	} {
		found, err := store.FindIDByDescription(s.ctx, tc.kind, tc.description)
		s.Require().NoError(err, "seed must contain %s %q", tc.kind, tc.description)
		s.False(found.IsNil())
	}
}
