package reftable

import (
	"bytes"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
)

func TestParseCSV(t *testing.T) {
	data := `catalog_id,catalog_title,catalog_author,catalog_publication_year,catalog_place
BO0624_1,Atlas,Ortelius,1574,Antwerp
BO0624_2,Herbarius,,no date,
,orphan row without id,,,
BO0624_3,,,,
`
	entries, err := Parse("reference.csv", strings.NewReader(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries (orphan row skipped), got %d", len(entries))
	}

	first := entries[0]
	if first.CatalogID != "BO0624_1" || first.CatalogTitle != "Atlas" || first.CatalogPlace != "Antwerp" {
		t.Errorf("first entry = %+v", first)
	}
	if first.CatalogPublicationYear == nil || *first.CatalogPublicationYear != 1574 {
		t.Errorf("first year = %v, expected 1574", first.CatalogPublicationYear)
	}

	// "no date" must normalize to absent, never zero.
	if entries[1].CatalogPublicationYear != nil {
		t.Errorf("second year = %v, expected absent", entries[1].CatalogPublicationYear)
	}

	if entries[2].CatalogID != "BO0624_3" || entries[2].CatalogTitle != "" {
		t.Errorf("third entry = %+v", entries[2])
	}
}

func TestParseCSVUnprefixedHeaders(t *testing.T) {
	data := "id,title,publication_year\nBO0624_1,Atlas,1574\n"

	entries, err := Parse("short.csv", strings.NewReader(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(entries) != 1 || entries[0].CatalogTitle != "Atlas" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestParseCSVMissingIDColumn(t *testing.T) {
	_, err := Parse("bad.csv", strings.NewReader("title,author\nAtlas,Ortelius\n"))
	if err == nil {
		t.Fatal("expected error for table without catalog_id column")
	}
}

func TestParseCSVEmpty(t *testing.T) {
	_, err := Parse("empty.csv", strings.NewReader(""))
	if err == nil {
		t.Fatal("expected error for empty table")
	}
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := Parse("reference.xlsx", strings.NewReader("whatever"))
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParseParquet(t *testing.T) {
	var buf bytes.Buffer
	writer := parquet.NewGenericWriter[parquetRow](&buf)
	_, err := writer.Write([]parquetRow{
		{CatalogID: "BO0624_1", CatalogTitle: "Atlas", CatalogPublicationYear: "1574"},
		{CatalogID: "", CatalogTitle: "orphan"},
		{CatalogID: "BO0624_2", CatalogPublicationYear: "unknown"},
	})
	if err != nil {
		t.Fatalf("writing test parquet failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing test parquet failed: %v", err)
	}

	entries, err := Parse("reference.parquet", bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].CatalogID != "BO0624_1" || entries[0].CatalogTitle != "Atlas" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[0].CatalogPublicationYear == nil || *entries[0].CatalogPublicationYear != 1574 {
		t.Errorf("first year = %v, expected 1574", entries[0].CatalogPublicationYear)
	}
	if entries[1].CatalogPublicationYear != nil {
		t.Errorf("second year = %v, expected absent", entries[1].CatalogPublicationYear)
	}
}
