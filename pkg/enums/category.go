package enums

// NotificationCategory selects which per-user toggle gates delivery.
type NotificationCategory string

const (
	CategoryChat      NotificationCategory = "chat"
	CategoryExpense   NotificationCategory = "expense"
	CategoryTask      NotificationCategory = "task"
	CategoryBroadcast NotificationCategory = "broadcast"
)
