package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/oneroomhq/oneroom-backend/internal/compose"
	"github.com/oneroomhq/oneroom-backend/pkg/db/models"
	"github.com/oneroomhq/oneroom-backend/pkg/enums"
	"github.com/oneroomhq/oneroom-backend/pkg/logger"
)

var ErrUnsupportedEventType = errors.New("unsupported room event type")

// RoomDirectory resolves room display names for payload composition. A lookup
// failure degrades to the default label, it never aborts the notification.
type RoomDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Room, error)
}

// RecipientResolver computes the filtered recipient set for one event.
type RecipientResolver interface {
	Resolve(ctx context.Context, roomID uuid.UUID, actorID *uuid.UUID, category enums.NotificationCategory) ([]uuid.UUID, error)
}

// PushDispatcher fans a composed payload out to recipients' tokens.
type PushDispatcher interface {
	SendToUsers(ctx context.Context, roomID *uuid.UUID, recipients []uuid.UUID, payload compose.Payload) error
}

// handlerFunc decodes an event's snapshot and yields the composed payload
// plus the extracted actor.
type handlerFunc func(envelope Envelope, roomID, roomName string) (compose.Payload, *uuid.UUID, error)

// RouterParams groups dependencies for the event router.
type RouterParams struct {
	Rooms      RoomDirectory
	Resolver   RecipientResolver
	Dispatcher PushDispatcher
	Logger     *logger.Logger
}

// Router binds each room event type to its composer, then pushes every event
// through the shared resolve-and-dispatch pipeline.
type Router struct {
	handlers   map[enums.RoomEventType]handlerFunc
	rooms      RoomDirectory
	resolver   RecipientResolver
	dispatcher PushDispatcher
	log        *logger.Logger
}

// NewRouter wires the handler table for all supported room events.
func NewRouter(params RouterParams) (*Router, error) {
	if params.Rooms == nil {
		return nil, errors.New("rooms directory is required")
	}
	if params.Resolver == nil {
		return nil, errors.New("resolver is required")
	}
	if params.Dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}

	router := &Router{
		rooms:      params.Rooms,
		resolver:   params.Resolver,
		dispatcher: params.Dispatcher,
		log:        params.Logger,
	}
	router.handlers = map[enums.RoomEventType]handlerFunc{
		enums.RoomEventChatCreated:    handleChatCreated,
		enums.RoomEventExpenseCreated: handleExpenseCreated,
		enums.RoomEventExpenseUpdated: handleExpenseUpdated,
		enums.RoomEventExpenseDeleted: handleExpenseDeleted,
		enums.RoomEventTaskCreated:    handleTaskCreated,
		enums.RoomEventTaskUpdated:    handleTaskUpdated,
		enums.RoomEventTaskDeleted:    handleTaskDeleted,
	}
	return router, nil
}

// Handle composes, resolves and dispatches one room event.
func (r *Router) Handle(ctx context.Context, envelope Envelope) error {
	handler, ok := r.handlers[envelope.EventType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedEventType, envelope.EventType)
	}

	roomID, err := uuid.Parse(envelope.RoomID)
	if err != nil {
		return fmt.Errorf("invalid room id %q: %w", envelope.RoomID, err)
	}

	ctx = r.log.WithFields(ctx, map[string]any{
		"room_id":    envelope.RoomID,
		"event_type": string(envelope.EventType),
	})

	payload, actor, err := handler(envelope, envelope.RoomID, r.roomName(ctx, roomID))
	if err != nil {
		return err
	}

	recipients, err := r.resolver.Resolve(ctx, roomID, actor, envelope.EventType.Category())
	if err != nil {
		return fmt.Errorf("resolving recipients: %w", err)
	}
	if len(recipients) == 0 {
		r.log.Info(ctx, "no recipients after filtering")
		return nil
	}

	return r.dispatcher.SendToUsers(ctx, &roomID, recipients, payload)
}

// roomName fetches the room display name, degrading to the default label on
// any failure.
func (r *Router) roomName(ctx context.Context, roomID uuid.UUID) string {
	room, err := r.rooms.FindByID(ctx, roomID)
	if err != nil {
		ctx = r.log.WithField(ctx, "error", err.Error())
		r.log.Warn(ctx, "room name lookup failed, using default label")
		return compose.DefaultRoomName
	}
	if room == nil || room.Name == "" {
		return compose.DefaultRoomName
	}
	return room.Name
}

func handleChatCreated(envelope Envelope, roomID, roomName string) (compose.Payload, *uuid.UUID, error) {
	var snap chatSnapshot
	if err := decodeSnapshot(envelope, &snap); err != nil {
		return compose.Payload{}, nil, err
	}
	payload := compose.ChatMessage(roomID, roomName, compose.ChatFields{
		Type:         snap.Type,
		Text:         snap.Text,
		PollQuestion: snap.PollQuestion,
		LinkType:     snap.LinkType,
	})
	return payload, snap.onCreate(), nil
}

func handleExpenseCreated(envelope Envelope, roomID, roomName string) (compose.Payload, *uuid.UUID, error) {
	var snap expenseSnapshot
	if err := decodeSnapshot(envelope, &snap); err != nil {
		return compose.Payload{}, nil, err
	}
	return compose.ExpenseCreated(roomID, roomName, expenseFields(snap)), snap.onCreate(), nil
}

func handleExpenseUpdated(envelope Envelope, roomID, roomName string) (compose.Payload, *uuid.UUID, error) {
	var snap expenseSnapshot
	if err := decodeSnapshot(envelope, &snap); err != nil {
		return compose.Payload{}, nil, err
	}
	return compose.ExpenseUpdated(roomID, roomName, expenseFields(snap)), snap.onUpdate(), nil
}

func handleExpenseDeleted(envelope Envelope, roomID, roomName string) (compose.Payload, *uuid.UUID, error) {
	var snap expenseSnapshot
	if err := decodeSnapshot(envelope, &snap); err != nil {
		return compose.Payload{}, nil, err
	}
	return compose.ExpenseDeleted(roomID, roomName, expenseFields(snap)), snap.onDelete(), nil
}

func handleTaskCreated(envelope Envelope, roomID, roomName string) (compose.Payload, *uuid.UUID, error) {
	var snap taskSnapshot
	if err := decodeSnapshot(envelope, &snap); err != nil {
		return compose.Payload{}, nil, err
	}
	return compose.TaskCreated(roomID, roomName, taskFields(snap)), snap.onCreate(), nil
}

func handleTaskUpdated(envelope Envelope, roomID, roomName string) (compose.Payload, *uuid.UUID, error) {
	var snap taskSnapshot
	if err := decodeSnapshot(envelope, &snap); err != nil {
		return compose.Payload{}, nil, err
	}
	return compose.TaskUpdated(roomID, roomName, taskFields(snap)), snap.onUpdate(), nil
}

func handleTaskDeleted(envelope Envelope, roomID, roomName string) (compose.Payload, *uuid.UUID, error) {
	var snap taskSnapshot
	if err := decodeSnapshot(envelope, &snap); err != nil {
		return compose.Payload{}, nil, err
	}
	return compose.TaskDeleted(roomID, roomName, taskFields(snap)), snap.onDelete(), nil
}

func decodeSnapshot(envelope Envelope, target any) error {
	snap := envelope.snapshot()
	if len(snap) == 0 {
		return fmt.Errorf("empty snapshot for %s", envelope.EventType)
	}
	if err := json.Unmarshal(snap, target); err != nil {
		return fmt.Errorf("decode %s snapshot: %w", envelope.EventType, err)
	}
	return nil
}

func expenseFields(snap expenseSnapshot) compose.ExpenseFields {
	return compose.ExpenseFields{Description: snap.Description, Amount: snap.Amount}
}

func taskFields(snap taskSnapshot) compose.TaskFields {
	return compose.TaskFields{Title: snap.Title, Name: snap.Name}
}
