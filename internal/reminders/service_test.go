package reminders

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/oneroomhq/oneroom-backend/internal/compose"
	"github.com/oneroomhq/oneroom-backend/pkg/db/models"
	"github.com/oneroomhq/oneroom-backend/pkg/logger"
)

type fakeRoomLister struct {
	rooms []models.Room
	err   error
}

func (f *fakeRoomLister) ListAll(_ context.Context) ([]models.Room, error) {
	return f.rooms, f.err
}

type fakeTaskSource struct {
	instances map[uuid.UUID][]models.TaskInstance
	err       error
	windows   [][2]time.Time
}

func (f *fakeTaskSource) ListScheduledBetween(_ context.Context, roomID uuid.UUID, start, end time.Time) ([]models.TaskInstance, error) {
	f.windows = append(f.windows, [2]time.Time{start, end})
	if f.err != nil {
		return nil, f.err
	}
	return f.instances[roomID], nil
}

type fakeUserStore struct {
	prefs  map[uuid.UUID]*models.UserPreference
	tokens map[uuid.UUID][]string
}

func (f *fakeUserStore) Preferences(_ context.Context, userID uuid.UUID) (*models.UserPreference, error) {
	return f.prefs[userID], nil
}

func (f *fakeUserStore) Tokens(_ context.Context, userID uuid.UUID) ([]string, error) {
	return f.tokens[userID], nil
}

type digestCall struct {
	roomID  *uuid.UUID
	tokens  []string
	payload compose.Payload
}

type fakeDigestDispatcher struct {
	calls []digestCall
	err   error
}

func (f *fakeDigestDispatcher) SendToTokens(_ context.Context, roomID *uuid.UUID, _ int, tokens []string, payload compose.Payload) error {
	f.calls = append(f.calls, digestCall{roomID: roomID, tokens: tokens, payload: payload})
	return f.err
}

func boolPtr(v bool) *bool { return &v }

func newTestService(t *testing.T, rooms *fakeRoomLister, tasks TaskSource, users *fakeUserStore, dispatcher *fakeDigestDispatcher) *Service {
	t.Helper()
	service, err := NewService(ServiceParams{
		Rooms:      rooms,
		Tasks:      tasks,
		Users:      users,
		Dispatcher: dispatcher,
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return service
}

func instance(roomID uuid.UUID, assignee *uuid.UUID, title string, at time.Time) models.TaskInstance {
	return models.TaskInstance{
		ID:            uuid.New(),
		RoomID:        roomID,
		Title:         title,
		AssignedTo:    assignee,
		ScheduledDate: at,
	}
}

func TestRunGroupsTasksIntoSingleDigest(t *testing.T) {
	roomID := uuid.New()
	user := uuid.New()
	now := time.Date(2026, time.March, 5, 8, 0, 0, 0, time.UTC)

	rooms := &fakeRoomLister{rooms: []models.Room{{ID: roomID, Name: "Flat 4B"}}}
	tasks := &fakeTaskSource{instances: map[uuid.UUID][]models.TaskInstance{
		roomID: {
			instance(roomID, &user, "Water plants", now),
			instance(roomID, &user, "Dishes", now.Add(time.Hour)),
		},
	}}
	users := &fakeUserStore{tokens: map[uuid.UUID][]string{user: {"tok-1"}}}
	dispatcher := &fakeDigestDispatcher{}
	service := newTestService(t, rooms, tasks, users, dispatcher)

	if err := service.Run(context.Background(), now); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(dispatcher.calls) != 1 {
		t.Fatalf("expected 1 digest, got %d", len(dispatcher.calls))
	}
	call := dispatcher.calls[0]
	if call.payload.Body != "You have 2 tasks today in Flat 4B" {
		t.Fatalf("unexpected body %q", call.payload.Body)
	}
	if call.payload.Title != "⏰ Task reminder" {
		t.Fatalf("unexpected title %q", call.payload.Title)
	}
	if len(call.tokens) != 1 || call.tokens[0] != "tok-1" {
		t.Fatalf("unexpected tokens %v", call.tokens)
	}
}

func TestRunSingularDigestBody(t *testing.T) {
	roomID := uuid.New()
	user := uuid.New()
	now := time.Date(2026, time.March, 5, 8, 0, 0, 0, time.UTC)

	rooms := &fakeRoomLister{rooms: []models.Room{{ID: roomID, Name: "Flat 4B"}}}
	tasks := &fakeTaskSource{instances: map[uuid.UUID][]models.TaskInstance{
		roomID: {instance(roomID, &user, "Water plants", now)},
	}}
	users := &fakeUserStore{tokens: map[uuid.UUID][]string{user: {"tok-1"}}}
	dispatcher := &fakeDigestDispatcher{}
	service := newTestService(t, rooms, tasks, users, dispatcher)

	if err := service.Run(context.Background(), now); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if dispatcher.calls[0].payload.Body != `Don't forget: "Water plants" in Flat 4B` {
		t.Fatalf("unexpected body %q", dispatcher.calls[0].payload.Body)
	}
}

func TestRunUsesUTCDayWindow(t *testing.T) {
	roomID := uuid.New()
	now := time.Date(2026, time.March, 5, 23, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))

	rooms := &fakeRoomLister{rooms: []models.Room{{ID: roomID}}}
	tasks := &fakeTaskSource{}
	service := newTestService(t, rooms, tasks, &fakeUserStore{}, &fakeDigestDispatcher{})

	if err := service.Run(context.Background(), now); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(tasks.windows) != 1 {
		t.Fatalf("expected 1 query, got %d", len(tasks.windows))
	}
	start, end := tasks.windows[0][0], tasks.windows[0][1]
	wantStart := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) || !end.Equal(wantStart.Add(24*time.Hour)) {
		t.Fatalf("unexpected window %v - %v", start, end)
	}
}

func TestRunSkipsUnassignedTasks(t *testing.T) {
	roomID := uuid.New()
	now := time.Date(2026, time.March, 5, 8, 0, 0, 0, time.UTC)

	rooms := &fakeRoomLister{rooms: []models.Room{{ID: roomID, Name: "Flat 4B"}}}
	tasks := &fakeTaskSource{instances: map[uuid.UUID][]models.TaskInstance{
		roomID: {instance(roomID, nil, "Orphan task", now)},
	}}
	dispatcher := &fakeDigestDispatcher{}
	service := newTestService(t, rooms, tasks, &fakeUserStore{}, dispatcher)

	if err := service.Run(context.Background(), now); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(dispatcher.calls) != 0 {
		t.Fatalf("expected no digests, got %d", len(dispatcher.calls))
	}
}

func TestRunRespectsTaskReminderToggle(t *testing.T) {
	roomID := uuid.New()
	optedOut := uuid.New()
	optedIn := uuid.New()
	now := time.Date(2026, time.March, 5, 8, 0, 0, 0, time.UTC)

	rooms := &fakeRoomLister{rooms: []models.Room{{ID: roomID, Name: "Flat 4B"}}}
	tasks := &fakeTaskSource{instances: map[uuid.UUID][]models.TaskInstance{
		roomID: {
			instance(roomID, &optedOut, "Dishes", now),
			instance(roomID, &optedIn, "Water plants", now),
		},
	}}
	users := &fakeUserStore{
		prefs: map[uuid.UUID]*models.UserPreference{
			optedOut: {UserID: optedOut, TaskRemindersEnabled: boolPtr(false)},
		},
		tokens: map[uuid.UUID][]string{
			optedOut: {"tok-out"},
			optedIn:  {"tok-in"},
		},
	}
	dispatcher := &fakeDigestDispatcher{}
	service := newTestService(t, rooms, tasks, users, dispatcher)

	if err := service.Run(context.Background(), now); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(dispatcher.calls) != 1 {
		t.Fatalf("expected 1 digest, got %d", len(dispatcher.calls))
	}
	if dispatcher.calls[0].tokens[0] != "tok-in" {
		t.Fatalf("unexpected tokens %v", dispatcher.calls[0].tokens)
	}
}

func TestRunSkipsUsersWithoutTokens(t *testing.T) {
	roomID := uuid.New()
	user := uuid.New()
	now := time.Date(2026, time.March, 5, 8, 0, 0, 0, time.UTC)

	rooms := &fakeRoomLister{rooms: []models.Room{{ID: roomID}}}
	tasks := &fakeTaskSource{instances: map[uuid.UUID][]models.TaskInstance{
		roomID: {instance(roomID, &user, "Dishes", now)},
	}}
	dispatcher := &fakeDigestDispatcher{}
	service := newTestService(t, rooms, tasks, &fakeUserStore{}, dispatcher)

	if err := service.Run(context.Background(), now); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(dispatcher.calls) != 0 {
		t.Fatalf("expected no digests, got %d", len(dispatcher.calls))
	}
}

func TestRunRoomFailureDoesNotStopSweep(t *testing.T) {
	brokenRoom := uuid.New()
	healthyRoom := uuid.New()
	user := uuid.New()
	now := time.Date(2026, time.March, 5, 8, 0, 0, 0, time.UTC)

	rooms := &fakeRoomLister{rooms: []models.Room{
		{ID: brokenRoom, Name: "Broken"},
		{ID: healthyRoom, Name: "Healthy"},
	}}
	tasks := &brokenThenHealthySource{
		failFor: brokenRoom,
		instances: map[uuid.UUID][]models.TaskInstance{
			healthyRoom: {instance(healthyRoom, &user, "Dishes", now)},
		},
	}
	users := &fakeUserStore{tokens: map[uuid.UUID][]string{user: {"tok-1"}}}
	dispatcher := &fakeDigestDispatcher{}
	service := newTestService(t, rooms, tasks, users, dispatcher)

	err := service.Run(context.Background(), now)
	if err == nil {
		t.Fatal("expected combined error")
	}
	if len(dispatcher.calls) != 1 {
		t.Fatalf("healthy room should still dispatch, got %d calls", len(dispatcher.calls))
	}
}

type brokenThenHealthySource struct {
	failFor   uuid.UUID
	instances map[uuid.UUID][]models.TaskInstance
}

func (s *brokenThenHealthySource) ListScheduledBetween(_ context.Context, roomID uuid.UUID, _, _ time.Time) ([]models.TaskInstance, error) {
	if roomID == s.failFor {
		return nil, errors.New("query failed")
	}
	return s.instances[roomID], nil
}
