package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/oneroomhq/oneroom-backend/api/responses"
	"github.com/oneroomhq/oneroom-backend/api/validators"
	"github.com/oneroomhq/oneroom-backend/internal/compose"
	pkgerrors "github.com/oneroomhq/oneroom-backend/pkg/errors"
	"github.com/oneroomhq/oneroom-backend/pkg/logger"
)

type announceRequest struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body" validate:"required"`
}

// SendAnnouncement pushes an announcement to one room's topic.
func SendAnnouncement(dispatcher TopicSender, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dispatcher == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatcher unavailable"))
			return
		}

		roomID, err := uuid.Parse(chi.URLParam(r, "roomId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid room id"))
			return
		}

		var req announceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := compose.Announcement(roomID.String(), req.Title, req.Body)
		if err := dispatcher.SendToRoomTopic(r.Context(), roomID, payload); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "announcement failed"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "sent"})
	}
}
