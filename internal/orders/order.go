package orders

import (
	"strings"
	"time"

	"github.com/rkdoors/storefront-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Order is one placed door. UserID is empty for guest orders.
type Order struct {
	ID           string            `json:"id"`
	UserID       string            `json:"userId"`
	DoorID       string            `json:"doorId"`
	DoorName     string            `json:"doorName"`
	DoorImage    string            `json:"doorImage"`
	DoorCategory string            `json:"doorCategory"`
	Price        decimal.Decimal   `json:"price"`
	Width        string            `json:"width"`
	Height       string            `json:"height"`
	Thickness    string            `json:"thickness"`
	Name         string            `json:"name"`
	Address      string            `json:"address"`
	PhoneNumber  string            `json:"phoneNumber"`
	Pincode      string            `json:"pincode"`
	State        string            `json:"state"`
	Status       enums.OrderStatus `json:"status"`
	OrderDate    time.Time         `json:"orderDate"`
	DeliveryDate *time.Time        `json:"deliveryDate,omitempty"`
}

// Delivery is where and to whom an order ships.
type Delivery struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
	Pincode     string `json:"pincode"`
	State       string `json:"state"`
}

// Normalize trims every field.
func (d Delivery) Normalize() Delivery {
	return Delivery{
		Name:        strings.TrimSpace(d.Name),
		Address:     strings.TrimSpace(d.Address),
		PhoneNumber: strings.TrimSpace(d.PhoneNumber),
		Pincode:     strings.TrimSpace(d.Pincode),
		State:       strings.TrimSpace(d.State),
	}
}

// Missing lists, keyed by JSON field name, every blank delivery field.
func (d Delivery) Missing() map[string]string {
	n := d.Normalize()
	missing := map[string]string{}
	for field, value := range map[string]string{
		"name":        n.Name,
		"address":     n.Address,
		"phoneNumber": n.PhoneNumber,
		"pincode":     n.Pincode,
		"state":       n.State,
	} {
		if value == "" {
			missing[field] = "required"
		}
	}
	return missing
}

// NewOrder is what a caller supplies to AddOrder. The store assigns the id
// and order date; the manager sets the initial status.
type NewOrder struct {
	UserID       string
	DoorID       string
	DoorName     string
	DoorImage    string
	DoorCategory string
	Price        decimal.Decimal
	Width        string
	Height       string
	Thickness    string
	Delivery     Delivery
}

func (n NewOrder) toOrder() Order {
	d := n.Delivery.Normalize()
	return Order{
		UserID:       n.UserID,
		DoorID:       n.DoorID,
		DoorName:     n.DoorName,
		DoorImage:    n.DoorImage,
		DoorCategory: n.DoorCategory,
		Price:        n.Price,
		Width:        n.Width,
		Height:       n.Height,
		Thickness:    n.Thickness,
		Name:         d.Name,
		Address:      d.Address,
		PhoneNumber:  d.PhoneNumber,
		Pincode:      d.Pincode,
		State:        d.State,
		Status:       enums.OrderStatusPending,
	}
}

func (n NewOrder) problems() map[string]string {
	problems := n.Delivery.Missing()
	if strings.TrimSpace(n.DoorID) == "" {
		problems["doorId"] = "required"
	}
	if n.Price.IsNegative() {
		problems["price"] = "must not be negative"
	}
	for field, value := range map[string]string{"width": n.Width, "height": n.Height, "thickness": n.Thickness} {
		if strings.TrimSpace(value) == "" {
			problems[field] = "required"
		}
	}
	return problems
}

// Stats summarises the mirror for the admin dashboard. Revenue excludes
// cancelled orders.
type Stats struct {
	Total        int                       `json:"total"`
	ByStatus     map[enums.OrderStatus]int `json:"byStatus"`
	TotalRevenue decimal.Decimal           `json:"totalRevenue"`
}

func computeStats(orders []Order) Stats {
	stats := Stats{
		Total:        len(orders),
		ByStatus:     make(map[enums.OrderStatus]int, len(enums.OrderStatuses())),
		TotalRevenue: decimal.Zero,
	}
	for _, s := range enums.OrderStatuses() {
		stats.ByStatus[s] = 0
	}
	for _, o := range orders {
		stats.ByStatus[o.Status]++
		if o.Status != enums.OrderStatusCancelled {
			stats.TotalRevenue = stats.TotalRevenue.Add(o.Price)
		}
	}
	return stats
}

// FilterByStatus keeps orders in status, preserving order.
func FilterByStatus(orders []Order, status enums.OrderStatus) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}
