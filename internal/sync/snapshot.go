package sync

import (
	"strings"

	"github.com/digitizer-tools/catsync/internal/models"
)

// FormValues carries the raw text the user typed into the export form.
// The publication year stays a string until the snapshot parses it.
type FormValues struct {
	CatalogID              string `yaml:"catalog_id"`
	CatalogTitle           string `yaml:"catalog_title"`
	CatalogAuthor          string `yaml:"catalog_author"`
	CatalogPublicationYear string `yaml:"catalog_publication_year"`
	CatalogPublisher       string `yaml:"catalog_publisher"`
	CatalogPlace           string `yaml:"catalog_place"`
	CatalogLanguage        string `yaml:"catalog_language"`
	CatalogKeywords        string `yaml:"catalog_keywords"`
}

// BuildExportSnapshot produces the normalized record written at export
// time. Live form input wins over everything; the server entry for the
// effective id is only a fallback base, field by field. This two-tier
// coalesce is independent of the override/server precedence used for
// display. No network call is made and nothing is mutated.
func (c *Client) BuildExportSnapshot(detectedID string, form FormValues) models.CatalogEntry {
	effID := strings.TrimSpace(form.CatalogID)
	if effID == "" {
		effID = strings.TrimSpace(detectedID)
	}

	var base models.CatalogEntry
	if effID != "" {
		base, _ = c.registry.ServerEntry(effID)
	}

	take := func(formValue, baseValue string) string {
		if v := strings.TrimSpace(formValue); v != "" {
			return v
		}
		if v := strings.TrimSpace(baseValue); v != "" {
			return v
		}
		return ""
	}

	// The base year only applies when the form left the field blank; a
	// non-numeric form value yields an absent year, never a default.
	year := base.CatalogPublicationYear
	if strings.TrimSpace(form.CatalogPublicationYear) != "" {
		year = models.ParseYear(form.CatalogPublicationYear)
	}

	return models.CatalogEntry{
		CatalogID:              effID,
		CatalogTitle:           take(form.CatalogTitle, base.CatalogTitle),
		CatalogAuthor:          take(form.CatalogAuthor, base.CatalogAuthor),
		CatalogPublicationYear: year,
		CatalogPublisher:       take(form.CatalogPublisher, base.CatalogPublisher),
		CatalogPlace:           take(form.CatalogPlace, base.CatalogPlace),
		CatalogLanguage:        take(form.CatalogLanguage, base.CatalogLanguage),
		CatalogKeywords:        take(form.CatalogKeywords, base.CatalogKeywords),
	}
}
