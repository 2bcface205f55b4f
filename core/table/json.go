package table

import (
	"encoding/json"

	"gridsync/core/cell"
)

// Document is the JSON form of a table.
type Document struct {
	Index   string        `json:"index"`
	Columns []string      `json:"columns"`
	Rows    []DocumentRow `json:"rows"`
}

// DocumentRow is one row of a Document: the key followed by values in column order.
type DocumentRow struct {
	Key    cell.Value   `json:"key"`
	Values []cell.Value `json:"values"`
}

// Document converts the table to its JSON form.
func (t *Table) Document() Document {
	doc := Document{Index: t.indexName, Columns: t.Columns(), Rows: make([]DocumentRow, len(t.keys))}
	for i, k := range t.keys {
		doc.Rows[i] = DocumentRow{Key: k, Values: append([]cell.Value(nil), t.rows[i]...)}
	}
	return doc
}

// FromDocument builds a table from its JSON form.
func FromDocument(doc Document) (*Table, error) {
	t, err := New(doc.Index, doc.Columns...)
	if err != nil {
		return nil, err
	}
	for _, r := range doc.Rows {
		if err := t.Append(r.Key, r.Values...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MarshalJSON encodes the table as a Document.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Document())
}

// UnmarshalJSON decodes a Document.
func (t *Table) UnmarshalJSON(data []byte) error {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	out, err := FromDocument(doc)
	if err != nil {
		return err
	}
	*t = *out
	return nil
}
