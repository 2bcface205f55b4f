package sheets

import (
	"context"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// API is the subset of the Sheets service the accessor needs. It exists so the accessor can be
// exercised without network access.
type API interface {
	// GetValues reads a range in row-major order.
	GetValues(ctx context.Context, spreadsheetID, rng, render string) ([][]interface{}, error)
	// BatchUpdateValues writes several ranges in one request.
	BatchUpdateValues(ctx context.Context, spreadsheetID, input string, data []*sheets.ValueRange) error
	// SheetTitles lists worksheet titles in display order.
	SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error)
	// AddSheet creates a worksheet.
	AddSheet(ctx context.Context, spreadsheetID, title string, rows, cols int64) error
}

// serviceAPI adapts *sheets.Service to API.
type serviceAPI struct {
	svc *sheets.Service
}

// NewServiceAPI creates a Sheets client from a credentials file, or from application default
// credentials when path is empty.
func NewServiceAPI(ctx context.Context, credentialsFile string) (API, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	opts = append(opts, option.WithScopes(sheets.SpreadsheetsScope))

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &serviceAPI{svc: svc}, nil
}

func (a *serviceAPI) GetValues(ctx context.Context, spreadsheetID, rng, render string) ([][]interface{}, error) {
	resp, err := a.svc.Spreadsheets.Values.Get(spreadsheetID, rng).
		ValueRenderOption(render).
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (a *serviceAPI) BatchUpdateValues(ctx context.Context, spreadsheetID, input string, data []*sheets.ValueRange) error {
	_, err := a.svc.Spreadsheets.Values.BatchUpdate(spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: input,
		Data:             data,
	}).Context(ctx).Do()
	return err
}

func (a *serviceAPI) SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	ss, err := a.svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

func (a *serviceAPI) AddSheet(ctx context.Context, spreadsheetID, title string, rows, cols int64) error {
	req := &sheets.Request{
		AddSheet: &sheets.AddSheetRequest{
			Properties: &sheets.SheetProperties{
				Title: title,
				GridProperties: &sheets.GridProperties{
					RowCount:    rows,
					ColumnCount: cols,
				},
			},
		},
	}
	_, err := a.svc.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{req},
	}).Context(ctx).Do()
	return err
}
