package enums

import "fmt"

// RoomEventType tags the trigger messages delivered on the room-events topic.
type RoomEventType string

const (
	RoomEventChatCreated    RoomEventType = "chat.created"
	RoomEventExpenseCreated RoomEventType = "expense.created"
	RoomEventExpenseUpdated RoomEventType = "expense.updated"
	RoomEventExpenseDeleted RoomEventType = "expense.deleted"
	RoomEventTaskCreated    RoomEventType = "task.created"
	RoomEventTaskUpdated    RoomEventType = "task.updated"
	RoomEventTaskDeleted    RoomEventType = "task.deleted"
)

var validRoomEventTypes = []RoomEventType{
	RoomEventChatCreated,
	RoomEventExpenseCreated,
	RoomEventExpenseUpdated,
	RoomEventExpenseDeleted,
	RoomEventTaskCreated,
	RoomEventTaskUpdated,
	RoomEventTaskDeleted,
}

// ParseRoomEventType converts raw strings into RoomEventType.
func ParseRoomEventType(value string) (RoomEventType, error) {
	for _, candidate := range validRoomEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid room event type %q", value)
}

// Category maps an event type onto the preference toggle that gates it.
func (e RoomEventType) Category() NotificationCategory {
	switch e {
	case RoomEventChatCreated:
		return CategoryChat
	case RoomEventExpenseCreated, RoomEventExpenseUpdated, RoomEventExpenseDeleted:
		return CategoryExpense
	case RoomEventTaskCreated, RoomEventTaskUpdated, RoomEventTaskDeleted:
		return CategoryTask
	}
	return ""
}
