package sheets

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"gridsync/core/cell"
	"gridsync/core/grid"
	"gridsync/core/syncerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/sheets/v4"
)

// mockAPI is a testify mock of API.
type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) GetValues(ctx context.Context, spreadsheetID, rng, render string) ([][]interface{}, error) {
	args := m.Called(ctx, spreadsheetID, rng, render)
	values, _ := args.Get(0).([][]interface{})
	return values, args.Error(1)
}

func (m *mockAPI) BatchUpdateValues(ctx context.Context, spreadsheetID, input string, data []*sheets.ValueRange) error {
	args := m.Called(ctx, spreadsheetID, input, data)
	return args.Error(0)
}

func (m *mockAPI) SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	args := m.Called(ctx, spreadsheetID)
	titles, _ := args.Get(0).([]string)
	return titles, args.Error(1)
}

func (m *mockAPI) AddSheet(ctx context.Context, spreadsheetID, title string, rows, cols int64) error {
	args := m.Called(ctx, spreadsheetID, title, rows, cols)
	return args.Error(0)
}

func testWorkbook(api API, raw bool) *Workbook {
	wb := New(api, Config{SpreadsheetID: "doc", RawValues: raw, MaxRetries: 3, MaxBackoffSeconds: 1}, nil)
	wb.policy.base = time.Millisecond
	wb.policy.maxBackoff = 5 * time.Millisecond
	return wb
}

func TestAccessor_GetRangePadsResponse(t *testing.T) {
	api := new(mockAPI)
	api.On("GetValues", mock.Anything, "doc", "'Data'!A1:C3", renderFormatted).Return([][]interface{}{
		{"id", "x"},
		{},
		{"a", float64(2), "note"},
	}, nil)

	values, err := testWorkbook(api, false).Worksheet("Data").GetRange(context.Background(),
		grid.Position{Row: 1, Col: 1}, grid.Position{Row: 3, Col: 3})
	require.NoError(t, err)

	require.Len(t, values, 3)
	for _, row := range values {
		assert.Len(t, row, 3)
	}
	assert.Equal(t, cell.String("id"), values[0][0])
	assert.True(t, values[0][2].IsNull())
	assert.True(t, values[1][0].IsNull())
	assert.Equal(t, cell.Int(2), values[2][1])
	api.AssertExpectations(t)
}

func TestAccessor_GetColumnExtent(t *testing.T) {
	api := new(mockAPI)
	api.On("GetValues", mock.Anything, "doc", "B2:B", renderUnformatted).Return([][]interface{}{
		{"k1"}, {float64(7)}, {}, {"after gap"},
	}, nil)

	values, err := testWorkbook(api, true).Worksheet("").GetColumnExtent(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []cell.Value{cell.String("k1"), cell.Int(7)}, values)
}

func TestAccessor_SetRangeMergesRuns(t *testing.T) {
	api := new(mockAPI)
	var sent []*sheets.ValueRange
	api.On("BatchUpdateValues", mock.Anything, "doc", inputRaw, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(3).([]*sheets.ValueRange) }).
		Return(nil).Once()

	err := testWorkbook(api, true).Worksheet("S").SetRange(context.Background(), []grid.Cell{
		{Pos: grid.Position{Row: 2, Col: 2}, Value: cell.Int(5)},
		{Pos: grid.Position{Row: 2, Col: 1}, Value: cell.String("a")},
		{Pos: grid.Position{Row: 2, Col: 3}, Value: cell.Null()},
		{Pos: grid.Position{Row: 4, Col: 1}, Value: cell.Float(1.5)},
	})
	require.NoError(t, err)

	require.Len(t, sent, 2)
	assert.Equal(t, "'S'!A2:C2", sent[0].Range)
	assert.Equal(t, [][]interface{}{{"a", int64(5), ""}}, sent[0].Values)
	assert.Equal(t, "'S'!A4:A4", sent[1].Range)
	assert.Equal(t, [][]interface{}{{1.5}}, sent[1].Values)
	api.AssertExpectations(t)
}

func TestAccessor_SetRangeEmptyIsNoop(t *testing.T) {
	api := new(mockAPI)
	require.NoError(t, testWorkbook(api, false).Worksheet("S").SetRange(context.Background(), nil))
	api.AssertNotCalled(t, "BatchUpdateValues", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkbook_RetriesQuotaErrors(t *testing.T) {
	api := new(mockAPI)
	quota := &googleapi.Error{Code: http.StatusTooManyRequests}
	api.On("SheetTitles", mock.Anything, "doc").Return(nil, quota).Twice()
	api.On("SheetTitles", mock.Anything, "doc").Return([]string{"Sheet1"}, nil).Once()

	titles, err := testWorkbook(api, false).ListWorksheets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Sheet1"}, titles)
	api.AssertNumberOfCalls(t, "SheetTitles", 3)
}

func TestWorkbook_GivesUpAsRemoteError(t *testing.T) {
	api := new(mockAPI)
	api.On("SheetTitles", mock.Anything, "doc").Return(nil, &googleapi.Error{Code: http.StatusServiceUnavailable})

	_, err := testWorkbook(api, false).ListWorksheets(context.Background())
	assert.ErrorIs(t, err, syncerr.ErrRemote)
	assert.True(t, syncerr.IsRetryable(err))
	api.AssertNumberOfCalls(t, "SheetTitles", 4)
}

func TestWorkbook_DoesNotRetryPermanentErrors(t *testing.T) {
	api := new(mockAPI)
	denied := &googleapi.Error{Code: http.StatusForbidden, Errors: []googleapi.ErrorItem{{Reason: "forbidden"}}}
	api.On("SheetTitles", mock.Anything, "doc").Return(nil, denied)

	_, err := testWorkbook(api, false).ListWorksheets(context.Background())
	assert.ErrorIs(t, err, syncerr.ErrRemote)
	var gErr *googleapi.Error
	assert.True(t, errors.As(err, &gErr))
	api.AssertNumberOfCalls(t, "SheetTitles", 1)
}

func TestEnsureWorksheet(t *testing.T) {
	api := new(mockAPI)
	api.On("SheetTitles", mock.Anything, "doc").Return([]string{"Sheet1"}, nil)
	api.On("AddSheet", mock.Anything, "doc", "Data", int64(DefaultRows), int64(DefaultCols)).Return(nil).Once()
	wb := testWorkbook(api, false)

	created, err := EnsureWorksheet(context.Background(), wb, "Data")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnsureWorksheet(context.Background(), wb, "Sheet1")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = EnsureWorksheet(context.Background(), wb, "")
	require.NoError(t, err)
	assert.False(t, created)
	api.AssertExpectations(t)
}

func TestRetryable(t *testing.T) {
	assert.True(t, retryable(&googleapi.Error{Code: 429}))
	assert.True(t, retryable(&googleapi.Error{Code: 500}))
	assert.True(t, retryable(&googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "rateLimitExceeded"}}}))
	assert.False(t, retryable(&googleapi.Error{Code: 403}))
	assert.False(t, retryable(&googleapi.Error{Code: 404}))
	assert.False(t, retryable(errors.New("plain")))
}

func TestConfig_Options(t *testing.T) {
	cfg := Config{Header: 2, ColIndent: 1, NAValues: "nan, N/A", Types: "code:string, price:float"}
	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, 2, opts.Header)
	assert.Equal(t, []string{"nan", "N/A"}, opts.NAValues)
	assert.Equal(t, cell.TypeString, opts.Types.Of("code"))
	assert.Equal(t, cell.TypeFloat, opts.Types.Of("price"))

	_, err = Config{Types: "broken"}.Options()
	assert.Error(t, err)
	_, err = Config{Types: "a:decimal"}.Options()
	assert.Error(t, err)
}
