package commerce

// OrderStatus is the lifecycle state of an order as reported by the server.
// The client never moves an order between states itself; it only records
// server-confirmed transitions.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusFailed     OrderStatus = "FAILED"
)

// IsTerminal reports whether no further automatic transition occurs.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled || s == OrderStatusFailed
}

func (s OrderStatus) String() string { return string(s) }

// PaymentStatus is the state of one payment attempt. PENDING is the only
// non-terminal state.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusExpired   PaymentStatus = "EXPIRED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// IsTerminal reports whether the attempt can no longer change on its own.
func (s PaymentStatus) IsTerminal() bool {
	return s != PaymentStatusPending && s != ""
}

func (s PaymentStatus) String() string { return string(s) }
