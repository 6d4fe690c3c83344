package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/oneroomhq/oneroom-backend/internal/compose"
	"github.com/oneroomhq/oneroom-backend/pkg/db/models"
	dbtypes "github.com/oneroomhq/oneroom-backend/pkg/db/types"
	"github.com/oneroomhq/oneroom-backend/pkg/enums"
	"github.com/oneroomhq/oneroom-backend/pkg/logger"
)

type fakeRooms struct {
	rooms map[uuid.UUID]*models.Room
	err   error
}

func (f *fakeRooms) FindByID(_ context.Context, id uuid.UUID) (*models.Room, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rooms[id], nil
}

type resolveCall struct {
	roomID   uuid.UUID
	actorID  *uuid.UUID
	category enums.NotificationCategory
}

type fakeResolver struct {
	calls      []resolveCall
	recipients []uuid.UUID
	err        error
}

func (f *fakeResolver) Resolve(_ context.Context, roomID uuid.UUID, actorID *uuid.UUID, category enums.NotificationCategory) ([]uuid.UUID, error) {
	f.calls = append(f.calls, resolveCall{roomID: roomID, actorID: actorID, category: category})
	if f.err != nil {
		return nil, f.err
	}
	return f.recipients, nil
}

type dispatchCall struct {
	roomID     *uuid.UUID
	recipients []uuid.UUID
	payload    compose.Payload
}

type fakeDispatcher struct {
	calls []dispatchCall
	err   error
}

func (f *fakeDispatcher) SendToUsers(_ context.Context, roomID *uuid.UUID, recipients []uuid.UUID, payload compose.Payload) error {
	f.calls = append(f.calls, dispatchCall{roomID: roomID, recipients: recipients, payload: payload})
	return f.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestRouter(t *testing.T, rooms *fakeRooms, resolver *fakeResolver, dispatcher *fakeDispatcher) *Router {
	t.Helper()
	router, err := NewRouter(RouterParams{
		Rooms:      rooms,
		Resolver:   resolver,
		Dispatcher: dispatcher,
		Logger:     testLogger(),
	})
	if err != nil {
		t.Fatalf("NewRouter failed: %v", err)
	}
	return router
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func TestHandleChatCreated(t *testing.T) {
	roomID := uuid.New()
	sender := uuid.New()
	recipient := uuid.New()
	rooms := &fakeRooms{rooms: map[uuid.UUID]*models.Room{
		roomID: {ID: roomID, Name: "Flat 4B", MemberIDs: dbtypes.UUIDArray{sender, recipient}},
	}}
	resolver := &fakeResolver{recipients: []uuid.UUID{recipient}}
	dispatcher := &fakeDispatcher{}
	router := newTestRouter(t, rooms, resolver, dispatcher)

	envelope := Envelope{
		EventType: enums.RoomEventChatCreated,
		RoomID:    roomID.String(),
		After: mustJSON(t, map[string]any{
			"type":     "text",
			"text":     "See you tonight",
			"senderId": sender.String(),
		}),
	}
	if err := router.Handle(context.Background(), envelope); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if len(resolver.calls) != 1 {
		t.Fatalf("expected 1 resolve call, got %d", len(resolver.calls))
	}
	call := resolver.calls[0]
	if call.actorID == nil || *call.actorID != sender {
		t.Fatalf("unexpected actor %v", call.actorID)
	}
	if call.category != enums.CategoryChat {
		t.Fatalf("unexpected category %s", call.category)
	}

	if len(dispatcher.calls) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(dispatcher.calls))
	}
	payload := dispatcher.calls[0].payload
	if payload.Title != "💬 New message in Flat 4B" || payload.Body != "See you tonight" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestHandleTaskDeletedNoActorNotifiesAll(t *testing.T) {
	roomID := uuid.New()
	rooms := &fakeRooms{rooms: map[uuid.UUID]*models.Room{
		roomID: {ID: roomID, Name: "Flat 4B"},
	}}
	resolver := &fakeResolver{recipients: []uuid.UUID{uuid.New(), uuid.New()}}
	dispatcher := &fakeDispatcher{}
	router := newTestRouter(t, rooms, resolver, dispatcher)

	envelope := Envelope{
		EventType: enums.RoomEventTaskDeleted,
		RoomID:    roomID.String(),
		Before:    mustJSON(t, map[string]any{"title": "Dishes"}),
	}
	if err := router.Handle(context.Background(), envelope); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if resolver.calls[0].actorID != nil {
		t.Fatalf("expected nil actor, got %v", resolver.calls[0].actorID)
	}
	if len(dispatcher.calls) != 1 || len(dispatcher.calls[0].recipients) != 2 {
		t.Fatalf("unexpected dispatch %+v", dispatcher.calls)
	}
	if dispatcher.calls[0].payload.Body != `Deleted "Dishes"` {
		t.Fatalf("unexpected body %q", dispatcher.calls[0].payload.Body)
	}
}

func TestHandleExpenseDeletedComposesFromBefore(t *testing.T) {
	roomID := uuid.New()
	actor := uuid.New()
	rooms := &fakeRooms{rooms: map[uuid.UUID]*models.Room{
		roomID: {ID: roomID, Name: "Flat 4B"},
	}}
	resolver := &fakeResolver{recipients: []uuid.UUID{uuid.New()}}
	dispatcher := &fakeDispatcher{}
	router := newTestRouter(t, rooms, resolver, dispatcher)

	envelope := Envelope{
		EventType: enums.RoomEventExpenseDeleted,
		RoomID:    roomID.String(),
		Before: mustJSON(t, map[string]any{
			"description": "Groceries",
			"deletedBy":   actor.String(),
		}),
	}
	if err := router.Handle(context.Background(), envelope); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if resolver.calls[0].actorID == nil || *resolver.calls[0].actorID != actor {
		t.Fatalf("unexpected actor %v", resolver.calls[0].actorID)
	}
	if resolver.calls[0].category != enums.CategoryExpense {
		t.Fatalf("unexpected category %s", resolver.calls[0].category)
	}
	if dispatcher.calls[0].payload.Body != `Deleted "Groceries"` {
		t.Fatalf("unexpected body %q", dispatcher.calls[0].payload.Body)
	}
}

func TestHandleExpenseCreatedFormatsAmount(t *testing.T) {
	roomID := uuid.New()
	rooms := &fakeRooms{rooms: map[uuid.UUID]*models.Room{
		roomID: {ID: roomID, Name: "Flat 4B"},
	}}
	resolver := &fakeResolver{recipients: []uuid.UUID{uuid.New()}}
	dispatcher := &fakeDispatcher{}
	router := newTestRouter(t, rooms, resolver, dispatcher)

	envelope := Envelope{
		EventType: enums.RoomEventExpenseCreated,
		RoomID:    roomID.String(),
		After: mustJSON(t, map[string]any{
			"description": "Groceries",
			"amount":      42.5,
		}),
	}
	if err := router.Handle(context.Background(), envelope); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if dispatcher.calls[0].payload.Body != `Added "Groceries" - ₹42.50` {
		t.Fatalf("unexpected body %q", dispatcher.calls[0].payload.Body)
	}
}

func TestHandleRoomNameLookupFailureUsesDefault(t *testing.T) {
	roomID := uuid.New()
	rooms := &fakeRooms{err: errors.New("db down")}
	resolver := &fakeResolver{recipients: []uuid.UUID{uuid.New()}}
	dispatcher := &fakeDispatcher{}

	var logged bytes.Buffer
	router, err := NewRouter(RouterParams{
		Rooms:      rooms,
		Resolver:   resolver,
		Dispatcher: dispatcher,
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: &logged}),
	})
	if err != nil {
		t.Fatalf("NewRouter failed: %v", err)
	}

	envelope := Envelope{
		EventType: enums.RoomEventTaskCreated,
		RoomID:    roomID.String(),
		After:     mustJSON(t, map[string]any{"title": "Dishes"}),
	}
	if err := router.Handle(context.Background(), envelope); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if dispatcher.calls[0].payload.Title != "✅ New task in Room" {
		t.Fatalf("unexpected title %q", dispatcher.calls[0].payload.Title)
	}
	if !strings.Contains(logged.String(), "db down") {
		t.Fatalf("degraded lookup must log the cause, got %s", logged.String())
	}
}

func TestHandleNoRecipientsSkipsDispatch(t *testing.T) {
	roomID := uuid.New()
	rooms := &fakeRooms{}
	resolver := &fakeResolver{}
	dispatcher := &fakeDispatcher{}
	router := newTestRouter(t, rooms, resolver, dispatcher)

	envelope := Envelope{
		EventType: enums.RoomEventChatCreated,
		RoomID:    roomID.String(),
		After:     mustJSON(t, map[string]any{"type": "image"}),
	}
	if err := router.Handle(context.Background(), envelope); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if len(dispatcher.calls) != 0 {
		t.Fatalf("expected no dispatch, got %d", len(dispatcher.calls))
	}
}

func TestHandleUnsupportedEventType(t *testing.T) {
	router := newTestRouter(t, &fakeRooms{}, &fakeResolver{}, &fakeDispatcher{})

	err := router.Handle(context.Background(), Envelope{EventType: "room.renamed", RoomID: uuid.NewString()})
	if !errors.Is(err, ErrUnsupportedEventType) {
		t.Fatalf("expected ErrUnsupportedEventType, got %v", err)
	}
}

func TestHandleInvalidRoomID(t *testing.T) {
	router := newTestRouter(t, &fakeRooms{}, &fakeResolver{}, &fakeDispatcher{})

	envelope := Envelope{
		EventType: enums.RoomEventChatCreated,
		RoomID:    "not-a-uuid",
		After:     json.RawMessage(`{"type":"image"}`),
	}
	if err := router.Handle(context.Background(), envelope); err == nil {
		t.Fatal("expected error")
	}
}

func TestHandleResolverErrorPropagates(t *testing.T) {
	roomID := uuid.New()
	resolver := &fakeResolver{err: errors.New("db down")}
	router := newTestRouter(t, &fakeRooms{}, resolver, &fakeDispatcher{})

	envelope := Envelope{
		EventType: enums.RoomEventChatCreated,
		RoomID:    roomID.String(),
		After:     json.RawMessage(`{"type":"image"}`),
	}
	if err := router.Handle(context.Background(), envelope); err == nil {
		t.Fatal("expected error")
	}
}
