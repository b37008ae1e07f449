package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/piggybank/ledger-engine/internal/adapter/http/models"
	"github.com/piggybank/ledger-engine/internal/commons"
	"github.com/piggybank/ledger-engine/internal/logger"
)

type TransferService interface {
	Transfer(ctx context.Context, req models.TransferRequest) (commons.Response[models.TransferResponse], error)
}

type TransferController struct {
	service TransferService
}

func NewTransferController(service TransferService) *TransferController {
	return &TransferController{service: service}
}

func (c *TransferController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	handler := http.Handler(http.HandlerFunc(c.transfer))
	if authMiddleware != nil {
		handler = authMiddleware(handler)
	}

	mux.Handle("POST /transfers", handler)
}

func (c *TransferController) transfer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.TransferResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.service.Transfer(r.Context(), req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForError(err)
		if response.Message == "validation failed" || response.Message == "invalid request body" {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}
