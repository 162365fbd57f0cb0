package catalog

import (
	"strings"

	"github.com/rkdoors/storefront-backend/pkg/catalogapi"
	"github.com/shopspring/decimal"
)

// Door is one purchasable door variant from the catalog snapshot.
type Door struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Icon string `json:"icon"`
}

// mapDoor converts the REST shape. The second return reports whether the
// price had to be clamped to zero.
func mapDoor(d catalogapi.Door) (Door, bool) {
	price, err := decimal.NewFromString(strings.TrimSpace(d.Price))
	if err != nil {
		price = decimal.Zero
	}
	clamped := false
	if price.IsNegative() {
		price = decimal.Zero
		clamped = true
	}

	category := d.CategoryName
	if category == "" {
		category = d.Category.String()
	}

	return Door{
		ID:          d.ID.String(),
		Name:        d.Name,
		Price:       price,
		Image:       d.ImageURL,
		Category:    category,
		Description: d.Description,
	}, clamped
}

func mapCategory(c catalogapi.Category) Category {
	return Category{
		ID:   c.ID.String(),
		Name: c.Name,
		Slug: c.Slug,
		Icon: CategoryIcon(c.Name),
	}
}

// CategoryIcon picks a display glyph from the category name.
func CategoryIcon(name string) string {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "wood"):
		return "🪵"
	case strings.Contains(n, "laminate"), strings.Contains(n, "gloria"):
		return "🎨"
	case strings.Contains(n, "primer"):
		return "🧪"
	default:
		return "🚪"
	}
}
