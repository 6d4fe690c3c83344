package events

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oneroomhq/oneroom-backend/pkg/enums"
)

// AttrEventType is the message attribute carrying the event type tag.
const AttrEventType = "event_type"

// Envelope is one trigger message on the room-events topic. Creation events
// carry only After, deletions only Before, updates both.
type Envelope struct {
	EventType enums.RoomEventType `json:"-"`
	RoomID    string              `json:"room_id"`
	RecordID  string              `json:"record_id"`
	Before    json.RawMessage     `json:"before,omitempty"`
	After     json.RawMessage     `json:"after,omitempty"`
}

// snapshot returns the record state the event should be composed from:
// pre-deletion state for deletes, post-write state otherwise.
func (e Envelope) snapshot() json.RawMessage {
	switch e.EventType {
	case enums.RoomEventExpenseDeleted, enums.RoomEventTaskDeleted:
		return e.Before
	default:
		return e.After
	}
}

// actorFields are the legacy actor-bearing snapshot fields. Which field is
// authoritative depends on the write kind; extraction is first-present-wins
// and never fails.
type actorFields struct {
	SenderID  string `json:"senderId"`
	UID       string `json:"uid"`
	CreatedBy string `json:"createdBy"`
	UpdatedBy string `json:"updatedBy"`
	DeletedBy string `json:"deletedBy"`
}

func (a actorFields) onCreate() *uuid.UUID {
	return firstActor(a.SenderID, a.UID, a.CreatedBy)
}

func (a actorFields) onUpdate() *uuid.UUID {
	return firstActor(a.UpdatedBy, a.SenderID, a.UID, a.CreatedBy)
}

func (a actorFields) onDelete() *uuid.UUID {
	return firstActor(a.DeletedBy, a.SenderID, a.UID, a.CreatedBy)
}

func firstActor(candidates ...string) *uuid.UUID {
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if id, err := uuid.Parse(candidate); err == nil {
			return &id
		}
	}
	return nil
}

type chatSnapshot struct {
	actorFields
	Type         string `json:"type"`
	Text         string `json:"text"`
	PollQuestion string `json:"pollQuestion"`
	LinkType     string `json:"linkType"`
}

type expenseSnapshot struct {
	actorFields
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
}

type taskSnapshot struct {
	actorFields
	Title string `json:"title"`
	Name  string `json:"name"`
}
