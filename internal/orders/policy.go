package orders

import "github.com/rkdoors/storefront-backend/pkg/enums"

// Action is a status change offered to an administrator.
type Action struct {
	Label  string            `json:"label"`
	Target enums.OrderStatus `json:"target"`
}

var offeredActions = map[enums.OrderStatus][]Action{
	enums.OrderStatusPending: {
		{Label: "Confirm", Target: enums.OrderStatusConfirmed},
		{Label: "Cancel", Target: enums.OrderStatusCancelled},
	},
	enums.OrderStatusConfirmed: {
		{Label: "Ship", Target: enums.OrderStatusShipped},
	},
	enums.OrderStatusShipped: {
		{Label: "Deliver", Target: enums.OrderStatusDelivered},
	},
}

// AllowedTransitions returns the actions offered for an order in status.
// Terminal and unknown statuses offer nothing. UpdateOrderStatus does not
// consult this table; it is a presentation policy.
func AllowedTransitions(status enums.OrderStatus) []Action {
	return append([]Action{}, offeredActions[status]...)
}

// CanTransition reports whether target is among the offered actions.
func CanTransition(from, target enums.OrderStatus) bool {
	for _, a := range offeredActions[from] {
		if a.Target == target {
			return true
		}
	}
	return false
}
