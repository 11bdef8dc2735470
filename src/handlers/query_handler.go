package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/tradeledger/src/assistant"
	"github.com/username/tradeledger/src/logger"
	"github.com/username/tradeledger/src/security/validation"
	"github.com/username/tradeledger/src/services"
	"github.com/username/tradeledger/src/utils"
)

type QueryHandler struct {
	queryService services.QueryService
	maxBytes     int64
}

func NewQueryHandler(service services.QueryService, maxBodyBytes int64) *QueryHandler {
	return &QueryHandler{queryService: service, maxBytes: maxBodyBytes}
}

type queryRequest struct {
	Query    string `json:"query"`
	LedgerID string `json:"ledger_id"`
	Data     struct {
		ProcessedCSV string `json:"processed_csv"`
	} `json:"data"`
}

type queryResponse struct {
	Response string `json:"response"`
}

func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.L.Warn("Invalid query request body", "error", err)
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	answer, err := h.queryService.Query(r.Context(), services.QueryRequest{
		Query:        req.Query,
		LedgerID:     req.LedgerID,
		ProcessedCSV: req.Data.ProcessedCSV,
	})
	if err != nil {
		switch {
		case errors.Is(err, validation.ErrInvalidQuery):
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrLedgerNotFound):
			utils.SendJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrParsingFailed):
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, assistant.ErrNotConfigured):
			utils.SendJSONError(w, "The query assistant is not available.", http.StatusServiceUnavailable)
		default:
			logger.L.Error("Query failed", "ledgerID", req.LedgerID, "error", err)
			utils.SendJSONError(w, "Failed to answer the query. Please try again later.", http.StatusBadGateway)
		}
		return
	}

	utils.SendJSON(w, queryResponse{Response: answer}, http.StatusOK)
}
