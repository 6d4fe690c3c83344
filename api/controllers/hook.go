package controllers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/oneroomhq/oneroom-backend/internal/compose"
	"github.com/oneroomhq/oneroom-backend/pkg/logger"
)

type hookRequest struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Secret string `json:"secret"`
}

// HookBroadcast is the plain HTTP broadcast hook kept for legacy callers. Its
// contract is fixed: 204 for OPTIONS preflight, 405 for other non-POST
// methods, 403 on secret mismatch, 400 on missing fields, 200 on success.
func HookBroadcast(dispatcher TopicSender, secret string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusNoContent)
			return
		case http.MethodPost:
		default:
			writeHookJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}

		var req hookRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeHookJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		if secret == "" || subtle.ConstantTimeCompare([]byte(req.Secret), []byte(secret)) != 1 {
			logg.Warn(r.Context(), "broadcast hook rejected: secret mismatch")
			writeHookJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
			return
		}

		if req.Title == "" || req.Body == "" {
			writeHookJSON(w, http.StatusBadRequest, map[string]string{"error": "title and body are required"})
			return
		}

		payload := compose.Broadcast(req.Title, req.Body, "")
		if err := dispatcher.SendBroadcast(r.Context(), payload); err != nil {
			logg.Error(r.Context(), "broadcast hook dispatch failed", err)
			writeHookJSON(w, http.StatusInternalServerError, map[string]string{"error": "send failed"})
			return
		}
		writeHookJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

func writeHookJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
