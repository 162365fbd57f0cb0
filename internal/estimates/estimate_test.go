package estimates

import (
	"testing"
	"time"

	"github.com/rkdoors/storefront-backend/internal/cart"
	"github.com/rkdoors/storefront-backend/internal/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func teakLine(quantity int) cart.Line {
	return cart.Line{
		Door: catalog.Door{
			ID:       "7",
			Name:     "Teak Panel",
			Price:    decimal.NewFromInt(900),
			Image:    "https://cdn.rkdoors.in/teak.jpg",
			Category: "Wooden Doors",
		},
		Width:     "30",
		Height:    "78",
		Thickness: "32",
		Quantity:  quantity,
	}
}

func TestBuildArithmetic(t *testing.T) {
	at := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	e := Build("EST-001", at, []cart.Line{teakLine(2)}, "")

	require.Len(t, e.Items, 1)
	item := e.Items[0]
	assert.Equal(t, 1, item.SI)
	assert.Equal(t, "Teak Panel", item.Description)
	assert.Equal(t, "Wooden Doors", item.DesignNumber)
	assert.Equal(t, `30" × 78" × 32mm`, item.Size)
	assert.Equal(t, 16.25, item.SquareFeet)
	assert.True(t, item.Amount.Equal(decimal.NewFromInt(1800)))

	assert.True(t, e.Subtotal.Equal(decimal.NewFromInt(1800)))
	assert.True(t, e.Discount.IsZero())
	assert.True(t, e.Total.Equal(decimal.NewFromInt(1800)))
	assert.Equal(t, "Customer", e.ClientName)
	assert.Equal(t, "EST-001", e.Number)
	assert.True(t, e.Date.Equal(at))
}

func TestBuildNumbersRowsAndSums(t *testing.T) {
	second := teakLine(1)
	second.Door.ID = "9"
	second.Door.Price = decimal.RequireFromString("1250.50")
	e := Build("EST-002", time.Now(), []cart.Line{teakLine(2), second}, "  Meena  ")

	require.Len(t, e.Items, 2)
	assert.Equal(t, 2, e.Items[1].SI)
	assert.Equal(t, "Meena", e.ClientName)
	assert.True(t, e.Total.Equal(decimal.RequireFromString("3050.5")))
}

func TestSquareFeetTreatsUnparsableAsZero(t *testing.T) {
	assert.Equal(t, 0.0, squareFeet("abc", "78"))
	assert.Equal(t, 0.0, squareFeet("", ""))
	assert.Equal(t, 22.75, squareFeet("36", "91"))
	assert.Equal(t, 18.96, squareFeet("35", "78"))
}

func TestFormatINR(t *testing.T) {
	cases := map[string]string{
		"0":         "0",
		"999":       "999",
		"1800":      "1,800",
		"100000":    "1,00,000",
		"1234567":   "12,34,567",
		"123456789": "12,34,56,789",
		"1250.50":   "1,250.5",
		"99.999":    "100",
		"-45000":    "-45,000",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatINR(decimal.RequireFromString(in)), in)
	}
}
