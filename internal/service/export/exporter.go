// Package export writes today's rows of a table to a dated CSV file.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/export"
)

const (
	utf8BOM        = "\uFEFF"
	timeLayout     = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
	folderLayout   = "20060102"
	baseDateLayout = "2006.01.02"
)

// Config 내보내기 설정
type Config struct {
	OutBase  string
	Timezone string
	Parallel int
}

// Exporter CSV 내보내기
type Exporter struct {
	repo     export.SnapshotRepository
	outBase  string
	loc      *time.Location
	parallel int
	now      func() time.Time
}

// NewExporter 생성자, Timezone 이 비어 있으면 Asia/Seoul
func NewExporter(repo export.SnapshotRepository, cfg Config) (*Exporter, error) {
	tz := cfg.Timezone
	if tz == "" {
		tz = "Asia/Seoul"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}

	parallel := cfg.Parallel
	if parallel < 1 {
		parallel = 1
	}

	return &Exporter{
		repo:     repo,
		outBase:  cfg.OutBase,
		loc:      loc,
		parallel: parallel,
		now:      time.Now,
	}, nil
}

// Today 내보내기 기준일 (설정 시간대의 자정)
func (e *Exporter) Today() time.Time {
	n := e.now().In(e.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, e.loc)
}

// Export 오늘 기준 내보내기, 대상 행이 없으면 빈 경로
func (e *Exporter) Export(ctx context.Context, target export.Target) (string, error) {
	return e.ExportDay(ctx, target, e.Today())
}

// ExportDay day(설정 시간대 달력일) 기준 내보내기
func (e *Exporter) ExportDay(ctx context.Context, target export.Target, day time.Time) (string, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, e.loc)

	var (
		table *export.Table
		err   error
	)
	switch target.Filter {
	case export.FilterBaseDate:
		table, err = e.repo.RowsEqual(ctx, target.Table, target.Column, start.Format(baseDateLayout))
	default:
		table, err = e.repo.RowsBetween(ctx, target.Table, target.Column, start, start.AddDate(0, 0, 1))
	}
	if err != nil {
		return "", fmt.Errorf("export %s: %w", target.Table, err)
	}

	if table.Len() == 0 {
		log.Warn().Str("table", target.Table).Str("day", start.Format(dateLayout)).Msg("No rows to export, skipped")
		return "", nil
	}

	stamp := start.Format(folderLayout)
	dir := filepath.Join(e.outBase, stamp)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", target.Key, stamp))
	if err := e.writeFile(path, table, target.QuoteAll); err != nil {
		return "", fmt.Errorf("export %s: %w", target.Table, err)
	}

	log.Info().Str("table", target.Table).Int("rows", table.Len()).Str("path", path).Msg("CSV exported")
	return path, nil
}

// ExportGroup 그룹 대상 동시 내보내기, 작성된 경로를 대상 순서로 반환
func (e *Exporter) ExportGroup(ctx context.Context, group export.Group) ([]string, error) {
	targets, err := export.TargetsOf(group)
	if err != nil {
		return nil, err
	}

	day := e.Today()
	paths := make([]string, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallel)
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			path, err := e.ExportDay(gctx, target, day)
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	written := paths[:0]
	for _, p := range paths {
		if p != "" {
			written = append(written, p)
		}
	}
	return written, nil
}

func (e *Exporter) writeFile(path string, table *export.Table, quoteAll bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if _, err = io.WriteString(f, utf8BOM); err != nil {
		return err
	}

	records := make([][]string, 0, len(table.Rows)+1)
	records = append(records, table.Columns)
	for _, row := range table.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = e.format(v)
		}
		records = append(records, rec)
	}

	if quoteAll {
		return writeQuoted(f, records)
	}
	w := csv.NewWriter(f)
	return w.WriteAll(records)
}

// writeQuoted 모든 필드를 따옴표로 감싼 CSV
func writeQuoted(w io.Writer, records [][]string) error {
	var b strings.Builder
	for _, rec := range records {
		b.Reset()
		for i, field := range rec {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(field, `"`, `""`))
			b.WriteByte('"')
		}
		b.WriteString("\r\n")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

// format 셀 값 문자열 변환
// date 컬럼(UTC 자정)은 그대로, timestamptz 는 설정 시간대로 표시
func (e *Exporter) format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		if x.Location() == time.UTC && x.Equal(x.Truncate(24*time.Hour)) {
			return x.Format(timeLayout)
		}
		return x.In(e.loc).Format(timeLayout)
	case [16]byte:
		return uuid.UUID(x).String()
	case uuid.UUID:
		return x.String()
	case pgtype.Numeric:
		if !x.Valid {
			return ""
		}
		dv, err := x.Value()
		if err != nil || dv == nil {
			return ""
		}
		return fmt.Sprint(dv)
	case decimal.Decimal:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
