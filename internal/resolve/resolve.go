// Package resolve derives the effective catalog entry and a human-readable
// status line from raw registry state. Resolution is a pure function of a
// registry snapshot: it never mutates stored entries or overrides, so it can
// be recomputed after every mutation without side effects.
package resolve

import (
	"fmt"

	"github.com/digitizer-tools/catsync/internal/models"
	"github.com/digitizer-tools/catsync/internal/registry"
)

// Effective combines the snapshot's three sources into one effective entry
// and a status line for the UI. The entry is nil when no identifier is
// detected or nothing is known about it.
//
// Manual override fields win field-by-field over server fields; fields
// absent from both stay empty. The status branches are ordered so that the
// "reference table not loaded" message always wins, even when an override
// alone could produce an entry.
func Effective(snap registry.Snapshot) (*models.CatalogEntry, string) {
	entry := effectiveEntry(snap)

	if !snap.CSVLoaded {
		if snap.DetectedID != "" {
			return entry, fmt.Sprintf("no reference table loaded (optional). detected id: %s", snap.DetectedID)
		}
		return entry, "no reference table loaded (optional)"
	}
	if snap.DetectedID == "" {
		return entry, "no catalog id detected yet"
	}
	if entry != nil {
		label := entry.CatalogTitle
		if label == "" {
			label = snap.DetectedID
		}
		return entry, fmt.Sprintf("catalog detected: %s", label)
	}
	return entry, fmt.Sprintf("catalog id '%s' not found in reference table", snap.DetectedID)
}

func effectiveEntry(snap registry.Snapshot) *models.CatalogEntry {
	id := snap.DetectedID
	if id == "" {
		return nil
	}

	server, haveServer := snap.ServerEntries[id]
	manual, haveManual := snap.ManualOverrides[id]

	switch {
	case haveManual:
		merged := overlay(server, manual)
		merged.CatalogID = id
		return &merged
	case haveServer:
		server.CatalogID = id
		return &server
	default:
		return nil
	}
}

// overlay applies the set fields of manual on top of base.
func overlay(base, manual models.CatalogEntry) models.CatalogEntry {
	if manual.CatalogTitle != "" {
		base.CatalogTitle = manual.CatalogTitle
	}
	if manual.CatalogAuthor != "" {
		base.CatalogAuthor = manual.CatalogAuthor
	}
	if manual.CatalogPublicationYear != nil {
		base.CatalogPublicationYear = manual.CatalogPublicationYear
	}
	if manual.CatalogPublisher != "" {
		base.CatalogPublisher = manual.CatalogPublisher
	}
	if manual.CatalogPlace != "" {
		base.CatalogPlace = manual.CatalogPlace
	}
	if manual.CatalogLanguage != "" {
		base.CatalogLanguage = manual.CatalogLanguage
	}
	if manual.CatalogKeywords != "" {
		base.CatalogKeywords = manual.CatalogKeywords
	}
	return base
}
