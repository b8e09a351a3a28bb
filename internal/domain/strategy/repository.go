package strategy

import (
	"context"

	"github.com/google/uuid"
)

// ResultRepository 전략 요약 저장소 (strategy_result)
type ResultRepository interface {
	Create(ctx context.Context, result *Result) error
	GetByID(ctx context.Context, id uuid.UUID) (*Result, error)
	List(ctx context.Context, filter ResultFilter) ([]*Result, error)
}

// DetailRepository 전략 상세 저장소 (strategy_detail)
type DetailRepository interface {
	// UpsertBatch (signal_date, code, action) 기준 저장
	UpsertBatch(ctx context.Context, details []*Detail) (int, error)
	ListByResult(ctx context.Context, resultID uuid.UUID) ([]*Detail, error)
}

// SignalStateRepository 최초 발생 상태 저장소
type SignalStateRepository interface {
	ListByStrategy(ctx context.Context, strategyName string) (map[string]*SignalState, error)
	UpsertBatch(ctx context.Context, states []*SignalState) (int, error)
}
