package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/oneroomhq/oneroom-backend/internal/compose"
	"github.com/oneroomhq/oneroom-backend/pkg/db/models"
	"github.com/oneroomhq/oneroom-backend/pkg/enums"
	"github.com/oneroomhq/oneroom-backend/pkg/logger"
)

// RoomLister enumerates rooms for the daily sweep.
type RoomLister interface {
	ListAll(ctx context.Context) ([]models.Room, error)
}

// TaskSource queries a room's scheduled task instances.
type TaskSource interface {
	ListScheduledBetween(ctx context.Context, roomID uuid.UUID, start, end time.Time) ([]models.TaskInstance, error)
}

// UserStore reads preferences and push tokens for digest recipients.
type UserStore interface {
	Preferences(ctx context.Context, userID uuid.UUID) (*models.UserPreference, error)
	Tokens(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// DigestDispatcher fans a digest out to one user's tokens.
type DigestDispatcher interface {
	SendToTokens(ctx context.Context, roomID *uuid.UUID, recipients int, tokens []string, payload compose.Payload) error
}

// ServiceParams groups dependencies for the reminder service.
type ServiceParams struct {
	Rooms      RoomLister
	Tasks      TaskSource
	Users      UserStore
	Dispatcher DigestDispatcher
	Logger     *logger.Logger
}

// Service sends each user one digest per room covering the tasks scheduled
// for the current UTC calendar day.
type Service struct {
	rooms      RoomLister
	tasks      TaskSource
	users      UserStore
	dispatcher DigestDispatcher
	log        *logger.Logger
}

// NewService builds the daily reminder service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Rooms == nil {
		return nil, errors.New("room lister is required")
	}
	if params.Tasks == nil {
		return nil, errors.New("task source is required")
	}
	if params.Users == nil {
		return nil, errors.New("user store is required")
	}
	if params.Dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{
		rooms:      params.Rooms,
		tasks:      params.Tasks,
		users:      params.Users,
		dispatcher: params.Dispatcher,
		log:        params.Logger,
	}, nil
}

// Run sweeps every room once. A failure in one room does not stop the sweep;
// the combined error is returned at the end.
func (s *Service) Run(ctx context.Context, now time.Time) error {
	start, end := dayWindow(now)

	rooms, err := s.rooms.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("listing rooms: %w", err)
	}

	var errs []error
	for _, room := range rooms {
		if err := s.sweepRoom(ctx, room, start, end); err != nil {
			errs = append(errs, fmt.Errorf("room %s: %w", room.ID, err))
		}
	}
	return multierr.Combine(errs...)
}

func (s *Service) sweepRoom(ctx context.Context, room models.Room, start, end time.Time) error {
	ctx = s.log.WithRoomID(ctx, room.ID.String())

	instances, err := s.tasks.ListScheduledBetween(ctx, room.ID, start, end)
	if err != nil {
		return fmt.Errorf("listing task instances: %w", err)
	}
	if len(instances) == 0 {
		return nil
	}

	byUser := make(map[uuid.UUID][]string)
	for _, instance := range instances {
		if instance.AssignedTo == nil {
			continue
		}
		byUser[*instance.AssignedTo] = append(byUser[*instance.AssignedTo], digestTitle(instance))
	}

	roomName := room.Name
	if roomName == "" {
		roomName = compose.DefaultRoomName
	}

	var errs []error
	for userID, titles := range byUser {
		if err := s.notifyUser(ctx, room.ID, roomName, userID, titles); err != nil {
			errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
		}
	}
	return multierr.Combine(errs...)
}

func (s *Service) notifyUser(ctx context.Context, roomID uuid.UUID, roomName string, userID uuid.UUID, titles []string) error {
	ctx = s.log.WithUserID(ctx, userID.String())

	prefs, err := s.users.Preferences(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading preferences: %w", err)
	}
	if !prefs.MasterEnabled() || !prefs.CategoryEnabled(enums.CategoryTask) {
		return nil
	}

	tokens, err := s.users.Tokens(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}

	payload := compose.TaskDigest(roomID.String(), roomName, titles)
	return s.dispatcher.SendToTokens(ctx, &roomID, 1, tokens, payload)
}

func digestTitle(instance models.TaskInstance) string {
	if instance.Title != "" {
		return instance.Title
	}
	return "Task"
}

// dayWindow returns the UTC calendar day containing now as [start, end).
func dayWindow(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}
