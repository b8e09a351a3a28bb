package export

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/export"
	"github.com/gmdcjdakdcjd/stockbatch/internal/infra/database/postgres"
)

var _ export.SnapshotRepository = (*SnapshotRepository)(nil)

// SnapshotRepository export.SnapshotRepository 구현
type SnapshotRepository struct {
	pool *postgres.Pool
}

// NewSnapshotRepository 생성자
func NewSnapshotRepository(pool *postgres.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// RowsBetween table 에서 column 이 [from, to) 인 행
func (r *SnapshotRepository) RowsBetween(ctx context.Context, table, column string, from, to time.Time) (*export.Table, error) {
	query := fmt.Sprintf(`SELECT * FROM %s WHERE %s >= $1 AND %s < $2`,
		pgx.Identifier{table}.Sanitize(),
		pgx.Identifier{column}.Sanitize(),
		pgx.Identifier{column}.Sanitize(),
	)
	return r.collect(ctx, query, from, to)
}

// RowsEqual table 에서 column = value 인 행
func (r *SnapshotRepository) RowsEqual(ctx context.Context, table, column, value string) (*export.Table, error) {
	query := fmt.Sprintf(`SELECT * FROM %s WHERE %s = $1`,
		pgx.Identifier{table}.Sanitize(),
		pgx.Identifier{column}.Sanitize(),
	)
	return r.collect(ctx, query, value)
}

func (r *SnapshotRepository) collect(ctx context.Context, query string, args ...any) (*export.Table, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("export query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	t := &export.Table{Columns: make([]string, len(fields))}
	for i, f := range fields {
		t.Columns[i] = f.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("export scan: %w", err)
		}
		t.Rows = append(t.Rows, values)
	}

	return t, rows.Err()
}
