// Package sink serializes extracted tables. Each writer takes the final rows
// plus the source page set and owns nothing else; picking a destination and
// handling its I/O errors is the caller's concern.
package sink

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/tabfold/tabfold/model"
)

// document is the shape shared by the structured writers.
type document struct {
	Pages []int      `json:"pages" yaml:"pages"`
	Rows  [][]string `json:"rows" yaml:"rows"`
}

// WriteCSV writes the rows as CSV. Page provenance has no CSV representation
// and is dropped.
func WriteCSV(w io.Writer, rows model.Table) error {
	cw := csv.NewWriter(w)
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes {pages, rows} as indented JSON.
func WriteJSON(w io.Writer, pages []int, rows model.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(asDocument(pages, rows))
}

// WriteYAML writes {pages, rows} as a YAML document.
func WriteYAML(w io.Writer, pages []int, rows model.Table) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(asDocument(pages, rows))
}

func asDocument(pages []int, rows model.Table) document {
	doc := document{Pages: pages, Rows: make([][]string, len(rows))}
	if doc.Pages == nil {
		doc.Pages = []int{}
	}
	for i, r := range rows {
		doc.Rows[i] = r
	}
	return doc
}
