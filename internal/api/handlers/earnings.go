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

// EarningsHandler handles HTTP requests for earnings ledger endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the ledgerService.
type EarningsHandler struct {
	ledgerService *service.LedgerService
}

// NewEarningsHandler creates a new EarningsHandler with the provided service dependency.
func NewEarningsHandler(ledgerService *service.LedgerService) *EarningsHandler {
	return &EarningsHandler{
		ledgerService: ledgerService,
	}
}

// Ingest handles POST requests from the royalty ingestion pipeline. Merges a
// platform report line into the matching ledger record, creating it on first
// ingestion for the (user, song, period) triple.
//
// Endpoint: POST /api/earnings/ingest (internal, API-key protected)
// Request Body: IngestEarningsRequest
// Response: 200 OK with the updated LedgerRecord
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 409 Conflict if the record was modified concurrently
// Error: 500 Internal Server Error if persistence fails
func (h *EarningsHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.IngestEarningsRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateIngestEarnings(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	record, err := h.ledgerService.Ingest(r.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrVersionConflict) {
			response.RespondError(w, http.StatusConflict, apperrors.ErrVersionConflict.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to ingest earnings", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, record)
}

// Summary handles GET requests for a user's per-period earnings summary
// across all songs.
//
// Endpoint: GET /api/earnings/summary?userId={uuid}&period={YYYY-MM}
// Response: 200 OK with EarningsSummary
// Error: 400 Bad Request if userId or period is missing or malformed
// Error: 500 Internal Server Error if retrieval fails
func (h *EarningsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if err := validation.ValidateUUID(userID); err != nil {
		response.RespondError(w, http.StatusBadRequest, "valid userId is required", err.Error())
		return
	}

	period := r.URL.Query().Get("period")
	if err := validation.ValidatePeriod(period); err != nil {
		response.RespondError(w, http.StatusBadRequest, "valid period is required", err.Error())
		return
	}

	summary, err := h.ledgerService.Summary(userID, period)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveSummary.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// History handles GET requests for a user's ledger records, newest period
// first, optionally bounded by startPeriod/endPeriod (inclusive) and
// filtered by white-label domain.
//
// Endpoint: GET /api/earnings/history?userId={uuid}[&startPeriod=YYYY-MM][&endPeriod=YYYY-MM][&domain=...]
// Response: 200 OK with array of LedgerRecord
// Error: 400 Bad Request if userId is missing or a period bound is malformed
// Error: 500 Internal Server Error if retrieval fails
func (h *EarningsHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if err := validation.ValidateUUID(userID); err != nil {
		response.RespondError(w, http.StatusBadRequest, "valid userId is required", err.Error())
		return
	}

	startPeriod := r.URL.Query().Get("startPeriod")
	endPeriod := r.URL.Query().Get("endPeriod")
	for _, period := range []string{startPeriod, endPeriod} {
		if period == "" {
			continue
		}
		if err := validation.ValidatePeriod(period); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid period bound", err.Error())
			return
		}
	}

	records, err := h.ledgerService.History(userID, startPeriod, endPeriod, r.URL.Query().Get("domain"))
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveHistory.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, records)
}

// SongEarnings handles GET requests for all ledger records of a song.
//
// Endpoint: GET /api/earnings/song/{uuid}
// Response: 200 OK with array of LedgerRecord
// Error: 400 Bad Request if the song ID is invalid (validated by middleware)
// Error: 500 Internal Server Error if retrieval fails
func (h *EarningsHandler) SongEarnings(w http.ResponseWriter, r *http.Request) {
	songID := chi.URLParam(r, "uuid")

	records, err := h.ledgerService.SongEarnings(songID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveHistory.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, records)
}

// GetRecord handles GET requests to retrieve a single ledger record by ID.
//
// Endpoint: GET /api/earnings/record/{uuid}
// Response: 200 OK with LedgerRecord
// Error: 400 Bad Request if the record ID is invalid (validated by middleware)
// Error: 404 Not Found if the record does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *EarningsHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "uuid")

	record, err := h.ledgerService.GetRecord(recordID)
	if err != nil {
		if errors.Is(err, apperrors.ErrLedgerRecordNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrLedgerRecordNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveRecord.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, record)
}

// UpdateSplits handles PUT requests to replace a record's revenue splits and
// optionally its tax withholding rate.
//
// Endpoint: PUT /api/earnings/record/{uuid}/splits
// Request Body: UpdateSplitsRequest
// Response: 200 OK with the updated LedgerRecord
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if the record does not exist
// Error: 409 Conflict if the record was modified concurrently
// Error: 500 Internal Server Error if persistence fails
func (h *EarningsHandler) UpdateSplits(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.UpdateSplitsRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateSplits(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	record, err := h.ledgerService.UpdateSplits(r.Context(), recordID, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrLedgerRecordNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrLedgerRecordNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrVersionConflict):
			response.RespondError(w, http.StatusConflict, apperrors.ErrVersionConflict.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to update splits", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, record)
}

// Notifications handles GET requests for a record's notification list.
//
// Endpoint: GET /api/earnings/record/{uuid}/notifications
// Response: 200 OK with array of Notification
// Error: 404 Not Found if the record does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *EarningsHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "uuid")

	notifications, err := h.ledgerService.Notifications(recordID)
	if err != nil {
		if errors.Is(err, apperrors.ErrLedgerRecordNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrLedgerRecordNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveNotifications.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, notifications)
}

// MarkNotificationRead handles PUT requests flagging a notification as read.
//
// Endpoint: PUT /api/earnings/record/{uuid}/notifications/{notificationId}/read
// Response: 204 No Content
// Error: 404 Not Found if the record or notification does not exist
// Error: 500 Internal Server Error if the update fails
func (h *EarningsHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "uuid")
	notificationID := chi.URLParam(r, "notificationId")

	if err := validation.ValidateUUID(notificationID); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid UUID format", err.Error())
		return
	}

	err := h.ledgerService.MarkNotificationRead(r.Context(), recordID, notificationID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrLedgerRecordNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrLedgerRecordNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrNotificationNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrNotificationNotFound.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to update notification", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
