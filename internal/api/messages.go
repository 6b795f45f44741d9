package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"wbs/internal/model"

	"github.com/go-chi/chi/v5"
)

// authorizeConversation resolves who is talking: a manager via bearer
// token, or a reporter via PIN. pin may come from the query string or a
// request body field.
func (d Dependencies) authorizeConversation(w http.ResponseWriter, r *http.Request, reportID, pin string) (model.SenderType, *int64, bool) {
	if userID, ok := d.managerFromRequest(r); ok {
		return model.SenderManager, &userID, true
	}

	if pin == "" {
		WriteError(w, http.StatusUnauthorized, "pin_required", "PIN wajib disertakan", d.Log)
		return "", nil, false
	}
	if err := d.Pipeline.VerifyAccess(r.Context(), reportID, pin); err != nil {
		d.writeLookupError(w, err)
		return "", nil, false
	}
	return model.SenderReporter, nil, true
}

func (d Dependencies) listMessages(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")

	if _, _, ok := d.authorizeConversation(w, r, reportID, r.URL.Query().Get("pin")); !ok {
		return
	}

	limit := 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	offset := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}

	messages, err := d.Pipeline.Messages(r.Context(), reportID, limit, offset)
	if err != nil {
		d.writeLookupError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"count":    len(messages),
	})
}

type postMessageRequest struct {
	PIN     string `json:"pin,omitempty"`
	Content string `json:"content"`
}

func (d Dependencies) postMessage(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")

	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		WriteError(w, http.StatusBadRequest, "empty_message", "Pesan tidak boleh kosong", d.Log)
		return
	}

	sender, senderID, ok := d.authorizeConversation(w, r, reportID, req.PIN)
	if !ok {
		return
	}

	msg, err := d.Pipeline.SendMessage(r.Context(), reportID, sender, senderID, req.Content)
	if err != nil {
		d.writeLookupError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, msg)
}

type markReadRequest struct {
	PIN string `json:"pin,omitempty"`
}

func (d Dependencies) markMessagesRead(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")

	var req markReadRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	reader, _, ok := d.authorizeConversation(w, r, reportID, req.PIN)
	if !ok {
		return
	}

	count, err := d.Pipeline.MarkRead(r.Context(), reportID, reader)
	if err != nil {
		d.writeLookupError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"marked": count})
}
