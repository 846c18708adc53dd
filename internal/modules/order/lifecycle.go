package order

import "food-delivery/internal/models"

// AllowedTransitions is the order status graph. Statuses missing from the map
// (delivered, cancelled) are terminal.
var AllowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderNotAssigned: {models.OrderAssigned, models.OrderCancelled},
	models.OrderAssigned:    {models.OrderPicked, models.OrderCancelled},
	models.OrderPicked:      {models.OrderDelivered},
}

func CanTransition(from, to models.OrderStatus) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
