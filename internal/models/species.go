package models

// SpeciesRecord is one entry from the external species database.
type SpeciesRecord struct {
	ID               int    `json:"id"`
	CommonName       string `json:"common_name,omitempty"`
	ScientificName   string `json:"scientific_name"`
	Family           string `json:"family,omitempty"`
	FamilyCommonName string `json:"family_common_name,omitempty"`
	Year             *int   `json:"year,omitempty"`
	ImageURL         string `json:"image_url,omitempty"`
}
