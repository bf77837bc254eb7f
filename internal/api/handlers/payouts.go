package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/soundry/Royalty-Ledger-Backend/internal/api/request"
	"github.com/soundry/Royalty-Ledger-Backend/internal/api/response"
	"github.com/soundry/Royalty-Ledger-Backend/internal/apperrors"
	"github.com/soundry/Royalty-Ledger-Backend/internal/service"
	"github.com/soundry/Royalty-Ledger-Backend/internal/validation"
)

// PayoutHandler handles HTTP requests for payout endpoints.
type PayoutHandler struct {
	ledgerService *service.LedgerService
}

// NewPayoutHandler creates a new PayoutHandler with the provided service dependency.
func NewPayoutHandler(ledgerService *service.LedgerService) *PayoutHandler {
	return &PayoutHandler{
		ledgerService: ledgerService,
	}
}

// RequestPayout handles POST requests to create a payout against a ledger
// record's available balance. The created payout is returned with its
// generated ID so the payment collaborator can be invoked and report back
// via ProcessPayout.
//
// Endpoint: POST /api/payout
// Request Body: CreatePayoutRequest (ledgerRecordId, amount, method, notes)
// Response: 201 Created with Payout
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if the ledger record does not exist
// Error: 409 Conflict if the record was modified concurrently
// Error: 422 Unprocessable Entity on insufficient balance or amount below threshold
// Error: 500 Internal Server Error if persistence fails
func (h *PayoutHandler) RequestPayout(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreatePayoutRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreatePayout(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	payout, err := h.ledgerService.RequestPayout(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrLedgerRecordNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrLedgerRecordNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrInsufficientBalance):
			response.RespondError(w, http.StatusUnprocessableEntity, apperrors.ErrInsufficientBalance.Error(), err.Error())
		case errors.Is(err, apperrors.ErrBelowMinimumThreshold):
			response.RespondError(w, http.StatusUnprocessableEntity, apperrors.ErrBelowMinimumThreshold.Error(), err.Error())
		case errors.Is(err, apperrors.ErrInvalidAmount), errors.Is(err, apperrors.ErrInvalidMethod):
			response.RespondError(w, http.StatusBadRequest, err.Error(), "")
		case errors.Is(err, apperrors.ErrVersionConflict):
			response.RespondError(w, http.StatusConflict, apperrors.ErrVersionConflict.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to create payout", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusCreated, payout)
}

// ProcessPayout handles POST callbacks from the payment collaborator
// reporting a payout's outcome.
//
// Endpoint: POST /api/payout/{uuid}/process (internal, API-key protected)
// Request Body: ProcessPayoutRequest (status, transactionId, notes)
// Response: 200 OK with the updated Payout
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if the payout does not exist
// Error: 409 Conflict if the payout is already finalized or the record was
// modified concurrently
// Error: 500 Internal Server Error if persistence fails
func (h *PayoutHandler) ProcessPayout(w http.ResponseWriter, r *http.Request) {
	payoutID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.ProcessPayoutRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateProcessPayout(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	payout, err := h.ledgerService.ProcessPayout(r.Context(), payoutID, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPayoutNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrPayoutNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrPayoutFinalized):
			response.RespondError(w, http.StatusConflict, apperrors.ErrPayoutFinalized.Error(), err.Error())
		case errors.Is(err, apperrors.ErrVersionConflict):
			response.RespondError(w, http.StatusConflict, apperrors.ErrVersionConflict.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to process payout", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, payout)
}

// PayoutHistory handles GET requests for all payouts across a user's ledger
// records, newest first, with the completed total.
//
// Endpoint: GET /api/payout?userId={uuid}
// Response: 200 OK with PayoutHistory
// Error: 400 Bad Request if userId is missing or malformed
// Error: 500 Internal Server Error if retrieval fails
func (h *PayoutHandler) PayoutHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if err := validation.ValidateUUID(userID); err != nil {
		response.RespondError(w, http.StatusBadRequest, "valid userId is required", err.Error())
		return
	}

	history, err := h.ledgerService.PayoutHistory(userID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePayouts.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, history)
}
