package export

import (
	"context"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/export"
)

type mockSnapshotRepo struct {
	mock.Mock
}

func (m *mockSnapshotRepo) RowsBetween(ctx context.Context, table, column string, from, to time.Time) (*export.Table, error) {
	args := m.Called(ctx, table, column, from, to)
	if v := args.Get(0); v != nil {
		return v.(*export.Table), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSnapshotRepo) RowsEqual(ctx context.Context, table, column, value string) (*export.Table, error) {
	args := m.Called(ctx, table, column, value)
	if v := args.Get(0); v != nil {
		return v.(*export.Table), args.Error(1)
	}
	return nil, args.Error(1)
}

func setupExporter(t *testing.T) (*Exporter, *mockSnapshotRepo, string) {
	t.Helper()

	repo := &mockSnapshotRepo{}
	dir := t.TempDir()
	e, err := NewExporter(repo, Config{OutBase: dir, Timezone: "Asia/Seoul", Parallel: 2})
	require.NoError(t, err)

	// 2024-03-15 10:00 KST
	e.now = func() time.Time { return time.Date(2024, 3, 15, 1, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { repo.AssertExpectations(t) })
	return e, repo, dir
}

func readCSV(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestExporter_Export(t *testing.T) {
	ctx := context.Background()
	e, repo, dir := setupExporter(t)

	kst := e.loc
	from := time.Date(2024, 3, 15, 0, 0, 0, 0, kst)
	to := from.AddDate(0, 0, 1)

	table := &export.Table{
		Columns: []string{"code", "date", "close", "diff", "last_update"},
		Rows: [][]any{
			{"005930", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), 72300.0, 500.0, time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)},
			{"000660", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), 178500.5, nil, time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)},
		},
	}
	repo.On("RowsBetween", mock.Anything, "daily_price_kr", "last_update", mock.MatchedBy(from.Equal), mock.MatchedBy(to.Equal)).
		Return(table, nil)

	target, err := export.Lookup("daily_price_kr")
	require.NoError(t, err)

	path, err := e.Export(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20240315", "DAILY_PRICE_KR_20240315.csv"), path)

	got := readCSV(t, path)
	assert.True(t, strings.HasPrefix(got, "\uFEFF"), "BOM")
	assert.Equal(t,
		"\uFEFFcode,date,close,diff,last_update\n"+
			"005930,2024-03-15 00:00:00,72300,500,2024-03-15 18:30:00\n"+
			"000660,2024-03-15 00:00:00,178500.5,,2024-03-15 18:30:00\n",
		got)
}

func TestExporter_NoRowsSkipsFile(t *testing.T) {
	ctx := context.Background()
	e, repo, dir := setupExporter(t)

	repo.On("RowsBetween", mock.Anything, "strategy_result", "created_at", mock.Anything, mock.Anything).
		Return(&export.Table{Columns: []string{"id"}}, nil)

	target, err := export.Lookup("STRATEGY_RESULT")
	require.NoError(t, err)

	path, err := e.Export(ctx, target)
	require.NoError(t, err)
	assert.Empty(t, path)

	_, statErr := os.Stat(filepath.Join(dir, "20240315"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExporter_KodexQuotesAll(t *testing.T) {
	ctx := context.Background()
	e, repo, dir := setupExporter(t)

	id := uuid.MustParse("2b1f3c1e-4a55-4a6b-9a43-6f7b5d3f2a10")
	weight := pgtype.Numeric{Int: big.NewInt(2534), Exp: -2, Valid: true}
	repo.On("RowsEqual", mock.Anything, "kodex_etf_holdings", "base_date", "2024.03.15").
		Return(&export.Table{
			Columns: []string{"etf_id", "stock_name", "weight_ratio", "ref"},
			Rows:    [][]any{{"2ETF01", `삼성 "우"`, weight, [16]byte(id)}},
		}, nil)

	target, err := export.Lookup("kodex_etf_holdings")
	require.NoError(t, err)
	require.True(t, target.QuoteAll)

	path, err := e.Export(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20240315", "KODEX_ETF_HOLDINGS_20240315.csv"), path)

	assert.Equal(t,
		"\uFEFF\"etf_id\",\"stock_name\",\"weight_ratio\",\"ref\"\r\n"+
			"\"2ETF01\",\"삼성 \"\"우\"\"\",\"25.34\",\"2b1f3c1e-4a55-4a6b-9a43-6f7b5d3f2a10\"\r\n",
		readCSV(t, path))
}

func TestExporter_ExportGroup(t *testing.T) {
	ctx := context.Background()
	e, repo, dir := setupExporter(t)

	one := &export.Table{Columns: []string{"code"}, Rows: [][]any{{"A"}}}
	empty := &export.Table{Columns: []string{"code"}}

	repo.On("RowsBetween", mock.Anything, "strategy_result", "created_at", mock.Anything, mock.Anything).Return(one, nil)
	repo.On("RowsBetween", mock.Anything, "strategy_detail", "created_at", mock.Anything, mock.Anything).Return(empty, nil)

	paths, err := e.ExportGroup(ctx, export.GroupStrategy)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "20240315", "STRATEGY_RESULT_20240315.csv")}, paths)
}

func TestExporter_ExportGroupErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown group", func(t *testing.T) {
		e, _, _ := setupExporter(t)
		_, err := e.ExportGroup(ctx, export.Group("weekly"))
		assert.ErrorIs(t, err, export.ErrUnknownTarget)
	})

	t.Run("query failure", func(t *testing.T) {
		e, repo, _ := setupExporter(t)
		boom := errors.New("relation does not exist")
		repo.On("RowsEqual", mock.Anything, mock.Anything, "base_date", "2024.03.15").Return(nil, boom)

		_, err := e.ExportGroup(ctx, export.GroupKodex)
		assert.ErrorIs(t, err, boom)
	})
}

func TestNewExporter_InvalidTimezone(t *testing.T) {
	_, err := NewExporter(&mockSnapshotRepo{}, Config{Timezone: "Mars/Olympus"})
	assert.Error(t, err)
}
