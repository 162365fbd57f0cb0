package estimates

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rkdoors/storefront-backend/internal/cart"
	"github.com/shopspring/decimal"
)

const defaultClientName = "Customer"

// Item is one row of the estimate table.
type Item struct {
	ID           string          `json:"id"`
	SI           int             `json:"si"`
	Description  string          `json:"description"`
	Picture      string          `json:"picture,omitempty"`
	DesignNumber string          `json:"designNumber"`
	Size         string          `json:"size"`
	SquareFeet   float64         `json:"squareFeet"`
	Quantity     int             `json:"quantity"`
	Amount       decimal.Decimal `json:"amount"`
}

// Estimate is a priced quotation derived from a cart.
type Estimate struct {
	Number     string          `json:"estimateNumber"`
	Date       time.Time       `json:"date"`
	ClientName string          `json:"clientName"`
	Items      []Item          `json:"items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
}

// Build prices lines into an estimate. Discount is always zero.
func Build(number string, at time.Time, lines []cart.Line, clientName string) Estimate {
	clientName = strings.TrimSpace(clientName)
	if clientName == "" {
		clientName = defaultClientName
	}

	items := make([]Item, 0, len(lines))
	subtotal := decimal.Zero
	for i, line := range lines {
		amount := line.Subtotal()
		subtotal = subtotal.Add(amount)
		items = append(items, Item{
			ID:           line.Door.ID,
			SI:           i + 1,
			Description:  line.Door.Name,
			Picture:      line.Door.Image,
			DesignNumber: line.Door.Category,
			Size:         line.Width + `" × ` + line.Height + `" × ` + line.Thickness + "mm",
			SquareFeet:   squareFeet(line.Width, line.Height),
			Quantity:     line.Quantity,
			Amount:       amount,
		})
	}

	discount := decimal.Zero
	return Estimate{
		Number:     number,
		Date:       at,
		ClientName: clientName,
		Items:      items,
		Subtotal:   subtotal,
		Discount:   discount,
		Total:      subtotal.Sub(discount),
	}
}

// squareFeet converts inch dimensions to square feet rounded to two places.
// A dimension that does not parse counts as zero.
func squareFeet(width, height string) float64 {
	w := parseDimension(width)
	h := parseDimension(height)
	return math.Round(w*h/144*100) / 100
}

func parseDimension(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
