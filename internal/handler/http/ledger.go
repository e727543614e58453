package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/ledger"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type LedgerHandler interface {
	Record(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type ledgerHandlerImpl struct {
	ledgerService ledger.LedgerService
}

func NewLedgerHandler(ledgerService ledger.LedgerService) LedgerHandler {
	return &ledgerHandlerImpl{ledgerService: ledgerService}
}

func (h *ledgerHandlerImpl) Record(w http.ResponseWriter, r *http.Request) {
	var req ledger.RecordEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "id")

	result, err := h.ledgerService.Record(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Ledger entry recorded", result)
}

func (h *ledgerHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledgerService.List(r.Context(), ledger.ListEntriesRequest{
		EmployeeID: chi.URLParam(r, "id"),
		Month:      r.URL.Query().Get("month"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
