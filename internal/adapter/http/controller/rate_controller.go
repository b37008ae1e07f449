package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/piggybank/ledger-engine/internal/adapter/http/models"
	"github.com/piggybank/ledger-engine/internal/commons"
	"github.com/piggybank/ledger-engine/internal/logger"
)

type RateService interface {
	GetRates(ctx context.Context) (commons.Response[[]models.RateResponse], error)
	GetRate(ctx context.Context, req models.GetRateRequest) (commons.Response[models.RateResponse], error)
}

type RateController struct {
	service RateService
}

func NewRateController(service RateService) *RateController {
	return &RateController{service: service}
}

func (c *RateController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	wrap := func(h http.HandlerFunc) http.Handler {
		if authMiddleware != nil {
			return authMiddleware(h)
		}
		return h
	}

	mux.Handle("GET /rates", wrap(c.getRates))
	mux.Handle("GET /rates/{from}/{to}", wrap(c.getRate))
}

func (c *RateController) getRates(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	response, err := c.service.GetRates(r.Context())
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForError(err)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *RateController) getRate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	req := models.GetRateRequest{
		FromCurrency: r.PathValue("from"),
		ToCurrency:   r.PathValue("to"),
	}

	response, err := c.service.GetRate(r.Context(), req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForError(err)
		if response.Message == "validation failed" {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}
