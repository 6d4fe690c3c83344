package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/oneroomhq/oneroom-backend/api/responses"
	"github.com/oneroomhq/oneroom-backend/api/validators"
	"github.com/oneroomhq/oneroom-backend/internal/compose"
	pkgerrors "github.com/oneroomhq/oneroom-backend/pkg/errors"
	"github.com/oneroomhq/oneroom-backend/pkg/logger"
)

// TopicSender is the dispatcher surface the admin controllers need.
type TopicSender interface {
	SendBroadcast(ctx context.Context, payload compose.Payload) error
	SendToRoomTopic(ctx context.Context, roomID uuid.UUID, payload compose.Payload) error
}

type broadcastRequest struct {
	Title    string `json:"title" validate:"required"`
	Body     string `json:"body" validate:"required"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url"`
}

// SendBroadcast pushes an announcement to every subscribed client.
func SendBroadcast(dispatcher TopicSender, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dispatcher == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatcher unavailable"))
			return
		}

		var req broadcastRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := compose.Broadcast(req.Title, req.Body, req.ImageURL)
		if err := dispatcher.SendBroadcast(r.Context(), payload); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "broadcast failed"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "sent"})
	}
}
