package export

import (
	"context"
	"time"
)

// SnapshotRepository 내보내기용 원시 행 조회
type SnapshotRepository interface {
	// RowsBetween table 에서 column 이 [from, to) 인 행
	RowsBetween(ctx context.Context, table, column string, from, to time.Time) (*Table, error)

	// RowsEqual table 에서 column = value 인 행
	RowsEqual(ctx context.Context, table, column, value string) (*Table, error)
}
