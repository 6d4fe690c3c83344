package compose

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/oneroomhq/oneroom-backend/pkg/enums"
)

// DefaultRoomName labels payloads when the room lookup fails or the room
// carries no name.
const DefaultRoomName = "Room"

// chatPreviewLimit caps the plain-text chat body.
const chatPreviewLimit = 120

// Payload is the composed notification content. Data values ride along to the
// client untouched; `screen` tells the app where to navigate on tap.
type Payload struct {
	Title    string
	Body     string
	ImageURL string
	Category enums.NotificationCategory
	Data     map[string]string
}

// ChatFields is the chat message snapshot slice the composer consumes.
type ChatFields struct {
	Type         string
	Text         string
	PollQuestion string
	LinkType     string
}

// ExpenseFields is the expense snapshot slice the composer consumes.
type ExpenseFields struct {
	Description string
	Amount      *decimal.Decimal
}

// TaskFields is the task snapshot slice the composer consumes.
type TaskFields struct {
	Title string
	Name  string
}

// ChatMessage builds the payload for a new chat message.
func ChatMessage(roomID, roomName string, fields ChatFields) Payload {
	messageType := fields.Type
	if messageType == "" {
		messageType = "text"
	}

	var body string
	switch {
	case messageType == "text" && fields.Text != "":
		body = truncateRunes(fields.Text, chatPreviewLimit)
	case messageType == "image":
		body = "Sent a photo"
	case messageType == "video":
		body = "Sent a video"
	case messageType == "audio":
		body = "Sent an audio message"
	case messageType == "poll":
		body = strings.TrimSpace("Started a poll: " + fields.PollQuestion)
	case messageType == "reminder":
		body = "Sent a payment reminder"
	case messageType == "link":
		linkType := fields.LinkType
		if linkType == "" {
			linkType = "an item"
		}
		body = "Shared a link to " + linkType
	default:
		body = "New message"
	}

	return Payload{
		Title:    fmt.Sprintf("💬 New message in %s", roomName),
		Body:     body,
		Category: enums.CategoryChat,
		Data: map[string]string{
			"type":     "chat",
			"roomId":   roomID,
			"roomName": roomName,
			"screen":   "chat",
		},
	}
}

// ExpenseCreated builds the payload for a new expense. The amount is rendered
// with two decimal places when present.
func ExpenseCreated(roomID, roomName string, fields ExpenseFields) Payload {
	description := expenseDescription(fields)
	body := fmt.Sprintf("Added %q", description)
	if fields.Amount != nil {
		body = fmt.Sprintf("Added %q - ₹%s", description, fields.Amount.StringFixed(2))
	}
	return expensePayload(roomID, roomName,
		fmt.Sprintf("💰 New expense in %s", roomName), body, "created")
}

// ExpenseUpdated builds the payload for an edited expense.
func ExpenseUpdated(roomID, roomName string, fields ExpenseFields) Payload {
	return expensePayload(roomID, roomName,
		fmt.Sprintf("✏️ Expense updated in %s", roomName),
		fmt.Sprintf("Updated %q", expenseDescription(fields)), "updated")
}

// ExpenseDeleted builds the payload for a removed expense, composed from the
// pre-deletion snapshot.
func ExpenseDeleted(roomID, roomName string, fields ExpenseFields) Payload {
	return expensePayload(roomID, roomName,
		fmt.Sprintf("🗑️ Expense deleted in %s", roomName),
		fmt.Sprintf("Deleted %q", expenseDescription(fields)), "deleted")
}

// TaskCreated builds the payload for a new task.
func TaskCreated(roomID, roomName string, fields TaskFields) Payload {
	return taskPayload(roomID, roomName,
		fmt.Sprintf("✅ New task in %s", roomName),
		fmt.Sprintf("Created %q", taskTitle(fields)), "created")
}

// TaskUpdated builds the payload for an edited task.
func TaskUpdated(roomID, roomName string, fields TaskFields) Payload {
	return taskPayload(roomID, roomName,
		fmt.Sprintf("✏️ Task updated in %s", roomName),
		fmt.Sprintf("Updated %q", taskTitle(fields)), "updated")
}

// TaskDeleted builds the payload for a removed task, composed from the
// pre-deletion snapshot.
func TaskDeleted(roomID, roomName string, fields TaskFields) Payload {
	return taskPayload(roomID, roomName,
		fmt.Sprintf("🗑️ Task deleted in %s", roomName),
		fmt.Sprintf("Deleted %q", taskTitle(fields)), "deleted")
}

// TaskDigest builds the per-user daily reminder body. Singular phrasing for a
// single task, plural count otherwise.
func TaskDigest(roomID, roomName string, titles []string) Payload {
	var body string
	if len(titles) == 1 {
		body = fmt.Sprintf("Don't forget: %q in %s", titles[0], roomName)
	} else {
		body = fmt.Sprintf("You have %d tasks today in %s", len(titles), roomName)
	}
	return Payload{
		Title:    "⏰ Task reminder",
		Body:     body,
		Category: enums.CategoryTask,
		Data: map[string]string{
			"type":     "task",
			"roomId":   roomID,
			"roomName": roomName,
			"screen":   "my_tasks",
			"action":   "reminder",
		},
	}
}

// Broadcast builds the payload for an app-wide admin broadcast. The optional
// image rides along as a rich notification attachment.
func Broadcast(title, body, imageURL string) Payload {
	return Payload{
		Title:    title,
		Body:     body,
		ImageURL: imageURL,
		Category: enums.CategoryBroadcast,
		Data: map[string]string{
			"type":   "broadcast",
			"screen": "dashboard",
		},
	}
}

// Announcement builds the payload for a single-room admin announcement.
func Announcement(roomID, title, body string) Payload {
	return Payload{
		Title:    title,
		Body:     body,
		Category: enums.CategoryBroadcast,
		Data: map[string]string{
			"type":   "announcement",
			"roomId": roomID,
			"screen": "dashboard",
		},
	}
}

func expenseDescription(fields ExpenseFields) string {
	if fields.Description == "" {
		return "an expense"
	}
	return fields.Description
}

func taskTitle(fields TaskFields) string {
	if fields.Title != "" {
		return fields.Title
	}
	if fields.Name != "" {
		return fields.Name
	}
	return "Task"
}

func expensePayload(roomID, roomName, title, body, action string) Payload {
	return Payload{
		Title:    title,
		Body:     body,
		Category: enums.CategoryExpense,
		Data: map[string]string{
			"type":     "expense",
			"roomId":   roomID,
			"roomName": roomName,
			"screen":   "expenses",
			"action":   action,
		},
	}
}

func taskPayload(roomID, roomName, title, body, action string) Payload {
	return Payload{
		Title:    title,
		Body:     body,
		Category: enums.CategoryTask,
		Data: map[string]string{
			"type":     "task",
			"roomId":   roomID,
			"roomName": roomName,
			"screen":   "tasks",
			"action":   action,
		},
	}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
