package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"wbs/internal/credential"
	"wbs/internal/model"
	"wbs/internal/store"

	"github.com/go-chi/chi/v5"
)

// maxBodySize bounds inbound JSON bodies.
const maxBodySize = 1 << 20

func (d Dependencies) submitReport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Gagal membaca request body", d.Log)
		return
	}

	// Shape check before decoding; length and content rules come later
	// in the validator.
	if err := d.Schema.ValidateSubmission(r.Context(), body); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_payload", err.Error(), d.Log)
		return
	}

	var sub model.Submission
	if err := json.Unmarshal(body, &sub); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}

	result := d.Pipeline.Submit(r.Context(), sub)
	if !result.Success {
		WriteJSON(w, http.StatusBadRequest, result)
		return
	}

	WriteJSON(w, http.StatusCreated, result)
}

// getReport serves two audiences: managers with a bearer token get the
// full report, reporters with a valid PIN get the sanitized status view.
func (d Dependencies) getReport(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")

	if _, ok := d.managerFromRequest(r); ok {
		report, err := d.Pipeline.Report(r.Context(), reportID)
		if err != nil {
			d.writeLookupError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, report)
		return
	}

	pin := r.URL.Query().Get("pin")
	if pin == "" {
		WriteError(w, http.StatusUnauthorized, "pin_required", "PIN wajib disertakan", d.Log)
		return
	}

	view, err := d.Pipeline.StatusView(r.Context(), reportID, pin)
	if err != nil {
		d.writeLookupError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

func (d Dependencies) listReports(w http.ResponseWriter, r *http.Request) {
	f := store.ListFilter{
		Status:   model.Status(r.URL.Query().Get("status")),
		Category: model.Category(r.URL.Query().Get("category")),
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		f.Limit = limit
	}

	reports, err := d.Pipeline.ListReports(r.Context(), f)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "list_failed", err.Error(), d.Log)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"count":   len(reports),
	})
}

type updateStatusRequest struct {
	Status model.Status `json:"status"`
	Notes  string       `json:"notes,omitempty"`
}

func (d Dependencies) updateStatus(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}
	if !model.ValidStatus(req.Status) {
		WriteError(w, http.StatusBadRequest, "invalid_status", "Status tidak valid: "+string(req.Status), d.Log)
		return
	}

	if err := d.Pipeline.UpdateStatus(r.Context(), reportID, req.Status, req.Notes); err != nil {
		d.writeLookupError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reportId": reportID,
		"status":   req.Status,
	})
}

type assignRequest struct {
	UserID int64 `json:"userId"`
}

func (d Dependencies) assignInvestigator(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}

	if err := d.Pipeline.AssignInvestigator(r.Context(), reportID, req.UserID); err != nil {
		d.writeLookupError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reportId":   reportID,
		"assignedTo": req.UserID,
	})
}

func (d Dependencies) statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := d.Pipeline.Statistics(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "stats_failed", err.Error(), d.Log)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// managerFromRequest parses an optional bearer token. It returns false
// for absent or invalid tokens; dual-gated handlers then fall back to
// PIN verification.
func (d Dependencies) managerFromRequest(r *http.Request) (int64, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return 0, false
	}
	userID, _, err := d.Auth.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		return 0, false
	}
	return userID, true
}

func (d Dependencies) writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, credential.ErrInvalidAccess):
		WriteError(w, http.StatusUnauthorized, "invalid_access", err.Error(), d.Log)
	case errors.Is(err, store.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "Laporan tidak ditemukan", d.Log)
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", err.Error(), d.Log)
	}
}
