package catalog

import (
	id "sisvita/pkg/domain"
)

// SeedEntries is the reference data loaded into the in-memory store
// when no database backs the catalog. IDs are fresh per process; only
// the descriptions are contractual.
func SeedEntries() []Entry {
	seed := map[Kind][]string{
		KindUserType:     {"Patient", "Specialist", "Administrator"},
		KindGender:       {"Masculino", "Femenino", "Otro"},
		KindDocumentType: {"DNI", "Pasaporte", "Carnet de Extranjeria"},
		KindLocation:     {"Lima", "Arequipa", "Cusco", "Trujillo", "Piura"},
	}

	var entries []Entry
	for kind, descriptions := range seed {
		for _, description := range descriptions {
			entries = append(entries, Entry{
				ID:          id.NewCatalogID(),
				Kind:        kind,
				Description: description,
			})
		}
	}
	return entries
}
