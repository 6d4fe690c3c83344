package resolve

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/oneroomhq/oneroom-backend/pkg/db/models"
	"github.com/oneroomhq/oneroom-backend/pkg/enums"
	"github.com/oneroomhq/oneroom-backend/pkg/logger"
)

// preference lookups for one event run concurrently, capped so a large room
// does not flood the database.
const prefLookupConcurrency = 8

// RoomDirectory is the read surface the resolver needs from the rooms repo.
type RoomDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Room, error)
}

// PreferenceStore is the read surface the resolver needs from the users repo.
type PreferenceStore interface {
	Preferences(ctx context.Context, userID uuid.UUID) (*models.UserPreference, error)
}

// ResolverParams groups dependencies for the recipient resolver.
type ResolverParams struct {
	Rooms  RoomDirectory
	Users  PreferenceStore
	Logger *logger.Logger
}

// Resolver computes the filtered recipient set for one room event.
type Resolver struct {
	rooms RoomDirectory
	users PreferenceStore
	log   *logger.Logger
}

// NewResolver builds a recipient resolver.
func NewResolver(params ResolverParams) (*Resolver, error) {
	if params.Rooms == nil {
		return nil, errors.New("rooms directory is required")
	}
	if params.Users == nil {
		return nil, errors.New("preference store is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Resolver{rooms: params.Rooms, users: params.Users, log: params.Logger}, nil
}

// Resolve returns the room members who should receive a notification of the
// given category, excluding the actor when one is known. A missing room yields
// an empty set, never an error.
func (r *Resolver) Resolve(ctx context.Context, roomID uuid.UUID, actorID *uuid.UUID, category enums.NotificationCategory) ([]uuid.UUID, error) {
	ctx = r.log.WithRoomID(ctx, roomID.String())

	room, err := r.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		r.log.Warn(ctx, "room not found, skipping notification")
		return nil, nil
	}

	candidates := make([]uuid.UUID, 0, len(room.MemberIDs))
	seen := make(map[uuid.UUID]struct{}, len(room.MemberIDs))
	for _, memberID := range room.MemberIDs {
		if actorID != nil && memberID == *actorID {
			continue
		}
		if _, dup := seen[memberID]; dup {
			continue
		}
		seen[memberID] = struct{}{}
		candidates = append(candidates, memberID)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	allowed := make([]bool, len(candidates))
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(prefLookupConcurrency)
	for i, memberID := range candidates {
		group.Go(func() error {
			prefs, err := r.users.Preferences(groupCtx, memberID)
			if err != nil {
				return err
			}
			ok := prefs.MasterEnabled() && prefs.CategoryEnabled(category)
			mu.Lock()
			allowed[i] = ok
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	recipients := make([]uuid.UUID, 0, len(candidates))
	for i, memberID := range candidates {
		if allowed[i] {
			recipients = append(recipients, memberID)
		}
	}
	return recipients, nil
}
