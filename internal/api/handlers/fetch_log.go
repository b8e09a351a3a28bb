package handlers

import (
	"net/http"
	"strconv"

	"github.com/gmdcjdakdcjd/stockbatch/internal/api/response"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/fetcher"
)

const (
	defaultFetchLogLimit = 20
	maxFetchLogLimit     = 200
)

// FetchLogHandler 수집 실행 기록 조회
type FetchLogHandler struct {
	logs fetcher.FetchLogRepository
}

// NewFetchLogHandler creates a new FetchLogHandler
func NewFetchLogHandler(logs fetcher.FetchLogRepository) *FetchLogHandler {
	return &FetchLogHandler{logs: logs}
}

// Recent handles GET /api/v1/fetch-logs?limit=
// 최근 시작 순
func (h *FetchLogHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := defaultFetchLogLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			response.BadRequest(w, r, "limit must be a positive integer")
			return
		}
		limit = min(n, maxFetchLogLimit)
	}

	logs, err := h.logs.GetRecent(r.Context(), limit)
	if err != nil {
		response.DatabaseError(w, r, err)
		return
	}
	if logs == nil {
		logs = []*fetcher.FetchLog{}
	}
	response.SuccessList(w, r, logs, len(logs))
}
