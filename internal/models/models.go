package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CatalogEntry describes one catalog item. CatalogID is the stable key;
// every other field may be empty. The publication year is nil when unknown,
// never zero.
type CatalogEntry struct {
	CatalogID              string `json:"catalog_id" yaml:"catalog_id"`
	CatalogTitle           string `json:"catalog_title,omitempty" yaml:"catalog_title"`
	CatalogAuthor          string `json:"catalog_author,omitempty" yaml:"catalog_author"`
	CatalogPublicationYear *int   `json:"catalog_publication_year,omitempty" yaml:"catalog_publication_year,omitempty"`
	CatalogPublisher       string `json:"catalog_publisher,omitempty" yaml:"catalog_publisher"`
	CatalogPlace           string `json:"catalog_place,omitempty" yaml:"catalog_place"`
	CatalogLanguage        string `json:"catalog_language,omitempty" yaml:"catalog_language"`
	CatalogKeywords        string `json:"catalog_keywords,omitempty" yaml:"catalog_keywords"`
}

// IsZero reports whether the entry carries no data at all.
func (e CatalogEntry) IsZero() bool {
	return e == CatalogEntry{}
}

// NullableString distinguishes a JSON field that is absent from one that is
// present but null or empty. Set is true whenever the field appeared in the
// payload, including an explicit null.
type NullableString struct {
	Set   bool
	Value string
}

// UnmarshalJSON records presence; null decodes to an empty value.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = ""
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}

// UploadResponse is the payload of POST /upload_csv.
type UploadResponse struct {
	SessionID  string         `json:"session_id,omitempty"`
	DetectedID NullableString `json:"detected_id"`
	Entry      *CatalogEntry  `json:"entry,omitempty"`
	Count      int            `json:"count,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// StatusResponse is the payload of GET /catalog_status. The zero value is
// the neutral "nothing to refresh" result.
type StatusResponse struct {
	DetectedID NullableString `json:"detected_id"`
	Entry      *CatalogEntry  `json:"entry,omitempty"`
}

// ParseYear normalizes free-form year input. Non-numeric or empty input
// yields nil, never a default numeric value.
func ParseYear(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// Year returns a pointer to n, for building entries in place.
func Year(n int) *int {
	return &n
}
