package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gmdcjdakdcjd/stockbatch/internal/api/response"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
	marketsvc "github.com/gmdcjdakdcjd/stockbatch/internal/service/market"
)

// MarketData 시장별 조회 경로
type MarketData interface {
	Resolve(codeOrName string) (string, error)
	Snapshot() *marketsvc.CodeSnapshot
	GetSeries(ctx context.Context, codeOrName, start, end string) ([]*market.DailyPrice, error)
}

// PriceHandler 일봉/종목 조회
type PriceHandler struct {
	markets map[market.Market]MarketData
}

// NewPriceHandler creates a new PriceHandler
func NewPriceHandler(markets map[market.Market]MarketData) *PriceHandler {
	return &PriceHandler{markets: markets}
}

// SeriesResponse 단일 종목 시계열
type SeriesResponse struct {
	Market market.Market        `json:"market"`
	Code   string               `json:"code"`
	Name   string               `json:"name"`
	Prices []*market.DailyPrice `json:"prices"`
}

func (h *PriceHandler) source(w http.ResponseWriter, r *http.Request) (market.Market, MarketData, bool) {
	m, err := market.ParseMarket(mux.Vars(r)["market"])
	if err != nil {
		response.BadRequest(w, r, err.Error())
		return "", nil, false
	}
	src, ok := h.markets[m]
	if !ok {
		response.NotFound(w, r, "market not served: "+string(m))
		return "", nil, false
	}
	return m, src, true
}

// GetSeries handles GET /api/v1/prices/{market}/{code}?start=&end=
func (h *PriceHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	m, src, ok := h.source(w, r)
	if !ok {
		return
	}

	query := mux.Vars(r)["code"]
	code, err := src.Resolve(query)
	if err != nil {
		response.NotFound(w, r, err.Error())
		return
	}

	q := r.URL.Query()
	prices, err := src.GetSeries(r.Context(), code, q.Get("start"), q.Get("end"))
	if err != nil {
		switch {
		case errors.Is(err, market.ErrInvalidDate), errors.Is(err, market.ErrInvalidDateRange):
			response.BadRequest(w, r, err.Error())
		case market.IsNotFoundError(err):
			response.NotFound(w, r, err.Error())
		default:
			response.DatabaseError(w, r, err)
		}
		return
	}

	response.SuccessList(w, r, SeriesResponse{
		Market: m,
		Code:   code,
		Name:   src.Snapshot().Name(code),
		Prices: prices,
	}, len(prices))
}

// GetInstrument handles GET /api/v1/instruments/{market}/{query}
// query 는 코드 또는 종목명
func (h *PriceHandler) GetInstrument(w http.ResponseWriter, r *http.Request) {
	_, src, ok := h.source(w, r)
	if !ok {
		return
	}

	code, err := src.Resolve(mux.Vars(r)["query"])
	if err != nil {
		response.NotFound(w, r, err.Error())
		return
	}

	inst, ok := src.Snapshot().Instrument(code)
	if !ok {
		response.NotFound(w, r, "instrument not found")
		return
	}
	response.Success(w, r, inst)
}
