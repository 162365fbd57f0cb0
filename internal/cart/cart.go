package cart

import (
	"sync"

	"github.com/rkdoors/storefront-backend/internal/catalog"
	"github.com/shopspring/decimal"
)

// Line is one door variant selection. Its identity is the door id plus the
// three size strings.
type Line struct {
	Door      catalog.Door `json:"door"`
	Width     string       `json:"width"`
	Height    string       `json:"height"`
	Thickness string       `json:"thickness"`
	Quantity  int          `json:"quantity"`
}

func (l Line) matches(doorID, width, height, thickness string) bool {
	return l.Door.ID == doorID && l.Width == width && l.Height == height && l.Thickness == thickness
}

// Subtotal is price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Door.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an in-memory, insertion ordered list of lines. None of its
// operations fail; callers validate input beforehand.
type Cart struct {
	mu    sync.Mutex
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// AddLine bumps the quantity of a line with the same identity, or appends a
// new line at quantity 1.
func (c *Cart) AddLine(door catalog.Door, width, height, thickness string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].matches(door.ID, width, height, thickness) {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, Line{Door: door, Width: width, Height: height, Thickness: thickness, Quantity: 1})
}

// RemoveLine drops every line for doorID regardless of size.
func (c *Cart) RemoveLine(doorID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(doorID)
}

func (c *Cart) removeLocked(doorID string) {
	kept := make([]Line, 0, len(c.lines))
	for _, l := range c.lines {
		if l.Door.ID != doorID {
			kept = append(kept, l)
		}
	}
	c.lines = kept
}

// SetQuantity updates the first line for doorID. A quantity of zero or less
// removes every line for that door.
func (c *Cart) SetQuantity(doorID string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if quantity <= 0 {
		c.removeLocked(doorID)
		return
	}
	for i := range c.lines {
		if c.lines[i].Door.ID == doorID {
			c.lines[i].Quantity = quantity
			return
		}
	}
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

func (c *Cart) TotalPrice() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Lines returns a copy in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line(nil), c.lines...)
}
