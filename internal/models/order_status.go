package models

// OrderStatus is the explicit order lifecycle state. Transitions go through
// the table below instead of string comparisons scattered across handlers.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRefunded   OrderStatus = "refunded"
)

// allowedTransitions maps each state to the states an admin action or a
// payment callback may move it to. Cancelled and refunded are terminal.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusShipped, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusProcessing, StatusCancelled, StatusRefunded},
	StatusDelivered:  {StatusRefunded},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

func (s OrderStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// StockDirection returns the stock side effect of a status transition:
// -1 when entering shipped, +1 when leaving shipped to anything except
// delivered (delivered is terminal consumption), 0 otherwise.
func StockDirection(from, to OrderStatus) int {
	if to == StatusShipped && from != StatusShipped {
		return -1
	}
	if from == StatusShipped && to != StatusShipped && to != StatusDelivered {
		return 1
	}
	return 0
}
