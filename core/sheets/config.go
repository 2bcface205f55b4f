package sheets

import (
	"fmt"
	"strings"
	"time"

	"gridsync/core/cell"
	"gridsync/core/reconcile"
)

// Config holds configuration for the Google Sheets connection and the managed table layout.
type Config struct {
	// CredentialsFile is the path to a service account JSON key. Empty uses application default credentials.
	CredentialsFile string `mapstructure:"credentials_file" default:""`
	// SpreadsheetID is the ID of the spreadsheet document.
	SpreadsheetID string `mapstructure:"spreadsheet_id" default:""`
	// Worksheet is the worksheet holding the table. Empty selects the first worksheet.
	Worksheet string `mapstructure:"worksheet" default:""`
	// Header is the row holding column names.
	Header int `mapstructure:"header" default:"1"`
	// ColIndent is the number of unmanaged columns left of the table.
	ColIndent int `mapstructure:"col_indent" default:"0"`
	// IndexColumn names the index column. Empty auto-detects it.
	IndexColumn string `mapstructure:"index_column" default:""`
	// NAValues is a comma separated list of cell texts read as missing.
	NAValues string `mapstructure:"na_values" default:"nan"`
	// Types is a comma separated list of column:type declarations (e.g. "code:string,price:float").
	Types string `mapstructure:"types" default:""`
	// RawValues reads unformatted values and writes input verbatim instead of parsing it like a user.
	RawValues bool `mapstructure:"raw_values" default:"false"`
	// RequestsPerMinute caps API requests across all worksheets.
	RequestsPerMinute int `mapstructure:"requests_per_minute" default:"60"`
	// MaxRetries is the number of retries for quota and server errors.
	MaxRetries int `mapstructure:"max_retries" default:"5"`
	// MaxBackoffSeconds caps the delay between retries.
	MaxBackoffSeconds int `mapstructure:"max_backoff_seconds" default:"60"`
	// TimeoutSeconds bounds each API request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// NAList returns the configured NA values.
func (c Config) NAList() []string {
	return splitList(c.NAValues)
}

// ColumnTypes parses the configured column type declarations.
func (c Config) ColumnTypes() (cell.Types, error) {
	types := make(cell.Types)
	for _, decl := range splitList(c.Types) {
		name, typ, ok := strings.Cut(decl, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid column type declaration %q", decl)
		}
		t, err := cell.ParseType(typ)
		if err != nil {
			return nil, err
		}
		types[strings.TrimSpace(name)] = t
	}
	return types, nil
}

// Options returns the table layout options for the reconcile engine.
func (c Config) Options() (reconcile.Options, error) {
	types, err := c.ColumnTypes()
	if err != nil {
		return reconcile.Options{}, err
	}
	na := c.NAList()
	if na == nil {
		na = []string{}
	}
	return reconcile.Options{
		Header:      c.Header,
		ColIndent:   c.ColIndent,
		IndexColumn: c.IndexColumn,
		NAValues:    na,
		Types:       types,
	}, nil
}

// Timeout returns the per-request timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
