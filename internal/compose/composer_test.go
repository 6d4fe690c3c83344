package compose

import (
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestChatMessageTextTruncated(t *testing.T) {
	long := strings.Repeat("Hello world, this message is quite long. ", 5)
	if len([]rune(long)) <= 120 {
		t.Fatalf("test input too short: %d runes", len([]rune(long)))
	}

	payload := ChatMessage("room-1", "Flat 4B", ChatFields{Type: "text", Text: long})
	if payload.Body != string([]rune(long)[:120]) {
		t.Fatalf("unexpected body %q", payload.Body)
	}
	if payload.Title != "💬 New message in Flat 4B" {
		t.Fatalf("unexpected title %q", payload.Title)
	}
	if payload.Data["screen"] != "chat" || payload.Data["roomId"] != "room-1" {
		t.Fatalf("unexpected data %v", payload.Data)
	}
}

func TestChatMessageShortTextKeptWhole(t *testing.T) {
	payload := ChatMessage("room-1", "Flat 4B", ChatFields{Type: "text", Text: "See you tonight"})
	if payload.Body != "See you tonight" {
		t.Fatalf("unexpected body %q", payload.Body)
	}
}

func TestChatMessageFixedBodies(t *testing.T) {
	cases := []struct {
		fields ChatFields
		body   string
	}{
		{ChatFields{Type: "image"}, "Sent a photo"},
		{ChatFields{Type: "video"}, "Sent a video"},
		{ChatFields{Type: "audio"}, "Sent an audio message"},
		{ChatFields{Type: "poll", PollQuestion: "Pizza night?"}, "Started a poll: Pizza night?"},
		{ChatFields{Type: "poll"}, "Started a poll:"},
		{ChatFields{Type: "reminder"}, "Sent a payment reminder"},
		{ChatFields{Type: "link", LinkType: "an expense"}, "Shared a link to an expense"},
		{ChatFields{Type: "link"}, "Shared a link to an item"},
		{ChatFields{Type: "sticker"}, "New message"},
		{ChatFields{Type: "text"}, "New message"},
		{ChatFields{}, "New message"},
	}
	for _, tc := range cases {
		payload := ChatMessage("room-1", "Flat 4B", tc.fields)
		if payload.Body != tc.body {
			t.Fatalf("type %q: got body %q, want %q", tc.fields.Type, payload.Body, tc.body)
		}
	}
}

func TestExpenseCreatedWithAmount(t *testing.T) {
	amount := decimal.NewFromFloat(42.5)
	payload := ExpenseCreated("room-1", "Flat 4B", ExpenseFields{Description: "Groceries", Amount: &amount})
	if payload.Body != `Added "Groceries" - ₹42.50` {
		t.Fatalf("unexpected body %q", payload.Body)
	}
	if payload.Title != "💰 New expense in Flat 4B" {
		t.Fatalf("unexpected title %q", payload.Title)
	}
	if payload.Data["action"] != "created" || payload.Data["screen"] != "expenses" {
		t.Fatalf("unexpected data %v", payload.Data)
	}
}

func TestExpenseCreatedWithoutAmount(t *testing.T) {
	payload := ExpenseCreated("room-1", "Flat 4B", ExpenseFields{Description: "Groceries"})
	if payload.Body != `Added "Groceries"` {
		t.Fatalf("unexpected body %q", payload.Body)
	}
}

func TestExpenseDescriptionFallback(t *testing.T) {
	payload := ExpenseUpdated("room-1", "Flat 4B", ExpenseFields{})
	if payload.Body != `Updated "an expense"` {
		t.Fatalf("unexpected body %q", payload.Body)
	}
	deleted := ExpenseDeleted("room-1", "Flat 4B", ExpenseFields{Description: "Rent"})
	if deleted.Body != `Deleted "Rent"` {
		t.Fatalf("unexpected body %q", deleted.Body)
	}
	if deleted.Title != "🗑️ Expense deleted in Flat 4B" {
		t.Fatalf("unexpected title %q", deleted.Title)
	}
}

func TestTaskTitleFallbackChain(t *testing.T) {
	cases := []struct {
		fields TaskFields
		body   string
	}{
		{TaskFields{Title: "Take out trash", Name: "ignored"}, `Created "Take out trash"`},
		{TaskFields{Name: "Dishes"}, `Created "Dishes"`},
		{TaskFields{}, `Created "Task"`},
	}
	for _, tc := range cases {
		payload := TaskCreated("room-1", "Flat 4B", tc.fields)
		if payload.Body != tc.body {
			t.Fatalf("fields %+v: got body %q, want %q", tc.fields, payload.Body, tc.body)
		}
	}
}

func TestTaskPayloadActions(t *testing.T) {
	created := TaskCreated("room-1", "Flat 4B", TaskFields{Title: "Dishes"})
	updated := TaskUpdated("room-1", "Flat 4B", TaskFields{Title: "Dishes"})
	deleted := TaskDeleted("room-1", "Flat 4B", TaskFields{Title: "Dishes"})

	if created.Title != "✅ New task in Flat 4B" || created.Data["action"] != "created" {
		t.Fatalf("unexpected created payload %+v", created)
	}
	if updated.Title != "✏️ Task updated in Flat 4B" || updated.Body != `Updated "Dishes"` {
		t.Fatalf("unexpected updated payload %+v", updated)
	}
	if deleted.Title != "🗑️ Task deleted in Flat 4B" || deleted.Data["action"] != "deleted" {
		t.Fatalf("unexpected deleted payload %+v", deleted)
	}
	for _, payload := range []Payload{created, updated, deleted} {
		if payload.Data["screen"] != "tasks" {
			t.Fatalf("unexpected screen %q", payload.Data["screen"])
		}
	}
}

func TestTaskDigestSingular(t *testing.T) {
	payload := TaskDigest("room-1", "Flat 4B", []string{"Water plants"})
	if payload.Body != `Don't forget: "Water plants" in Flat 4B` {
		t.Fatalf("unexpected body %q", payload.Body)
	}
	if payload.Title != "⏰ Task reminder" {
		t.Fatalf("unexpected title %q", payload.Title)
	}
	if payload.Data["screen"] != "my_tasks" || payload.Data["action"] != "reminder" {
		t.Fatalf("unexpected data %v", payload.Data)
	}
}

func TestTaskDigestPlural(t *testing.T) {
	payload := TaskDigest("room-1", "Flat 4B", []string{"Water plants", "Dishes"})
	if payload.Body != "You have 2 tasks today in Flat 4B" {
		t.Fatalf("unexpected body %q", payload.Body)
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	amount := decimal.NewFromFloat(10.25)
	fields := ExpenseFields{Description: "Internet", Amount: &amount}
	first := ExpenseCreated("room-1", "Flat 4B", fields)
	second := ExpenseCreated("room-1", "Flat 4B", fields)
	if first.Title != second.Title || first.Body != second.Body {
		t.Fatalf("payloads differ: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(first.Data, second.Data) {
		t.Fatalf("data maps differ: %v vs %v", first.Data, second.Data)
	}
}

func TestBroadcastPayload(t *testing.T) {
	payload := Broadcast("Maintenance tonight", "App will be down at 2am", "https://cdn.example.com/banner.png")
	if payload.Data["type"] != "broadcast" || payload.Data["screen"] != "dashboard" {
		t.Fatalf("unexpected data %v", payload.Data)
	}
	if payload.ImageURL != "https://cdn.example.com/banner.png" {
		t.Fatalf("unexpected image url %q", payload.ImageURL)
	}
}

func TestAnnouncementPayload(t *testing.T) {
	payload := Announcement("room-1", "Rent due", "Pay by Friday")
	if payload.Data["roomId"] != "room-1" || payload.Data["type"] != "announcement" {
		t.Fatalf("unexpected data %v", payload.Data)
	}
}
