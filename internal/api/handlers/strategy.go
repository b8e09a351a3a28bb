package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gmdcjdakdcjd/stockbatch/internal/api/response"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/strategy"
	marketsvc "github.com/gmdcjdakdcjd/stockbatch/internal/service/market"
	"github.com/gmdcjdakdcjd/stockbatch/internal/strategy/screening"
)

const (
	defaultResultLimit = 50
	maxResultLimit     = 500
)

// StrategyHandler 전략 결과 조회
type StrategyHandler struct {
	results strategy.ResultRepository
	details strategy.DetailRepository
}

// NewStrategyHandler creates a new StrategyHandler
func NewStrategyHandler(results strategy.ResultRepository, details strategy.DetailRepository) *StrategyHandler {
	return &StrategyHandler{results: results, details: details}
}

// ResultWithDetails 결과 + 종목 목록
type ResultWithDetails struct {
	*strategy.Result
	Details []*strategy.Detail `json:"details"`
}

// ListResults handles GET /api/v1/strategies/results?date=&strategy=&limit=
func (h *StrategyHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := strategy.ResultFilter{
		StrategyName: q.Get("strategy"),
		Limit:        defaultResultLimit,
	}

	if d := q.Get("date"); d != "" {
		date, err := marketsvc.ParseDate(d)
		if err != nil {
			response.BadRequest(w, r, err.Error())
			return
		}
		filter.SignalDate = &date
	}

	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			response.BadRequest(w, r, "limit must be a positive integer")
			return
		}
		filter.Limit = min(n, maxResultLimit)
	}

	results, err := h.results.List(r.Context(), filter)
	if err != nil {
		response.DatabaseError(w, r, err)
		return
	}
	response.SuccessList(w, r, results, len(results))
}

// GetResult handles GET /api/v1/strategies/results/{id}
func (h *StrategyHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, r, "invalid result id")
		return
	}

	result, err := h.results.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, strategy.ErrResultNotFound) {
			response.NotFound(w, r, "strategy result not found")
			return
		}
		response.DatabaseError(w, r, err)
		return
	}

	h.writeWithDetails(w, r, result)
}

// Latest handles GET /api/v1/strategies/{name}/latest
func (h *StrategyHandler) Latest(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if _, err := screening.Lookup(name); err != nil {
		response.NotFound(w, r, err.Error())
		return
	}

	results, err := h.results.List(r.Context(), strategy.ResultFilter{StrategyName: name, Limit: 1})
	if err != nil {
		response.DatabaseError(w, r, err)
		return
	}
	if len(results) == 0 {
		response.NotFound(w, r, "no result for "+name)
		return
	}

	h.writeWithDetails(w, r, results[0])
}

func (h *StrategyHandler) writeWithDetails(w http.ResponseWriter, r *http.Request, result *strategy.Result) {
	details, err := h.details.ListByResult(r.Context(), result.ID)
	if err != nil {
		response.DatabaseError(w, r, err)
		return
	}
	response.Success(w, r, ResultWithDetails{Result: result, Details: details})
}
