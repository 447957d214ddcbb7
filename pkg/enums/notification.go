package enums

// NotificationType classifies in-app notifications raised by the worker.
type NotificationType string

const (
	NotificationOrderPlaced    NotificationType = "order_placed"
	NotificationLowStock       NotificationType = "low_stock"
	NotificationConfirmEmail   NotificationType = "confirm_email"
	NotificationOrderStateSync NotificationType = "order_state_sync"
)

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}
