package enums

import (
	"fmt"
	"strings"
)

// Door sizes offered on the product page. Widths and heights are inches,
// thickness is millimetres.
var (
	doorWidths      = []string{"27", "30", "32", "33", "36", "38", "42", "48"}
	doorHeights     = []string{"72", "75", "78", "81", "84", "90", "96"}
	doorThicknesses = []string{"32", "35", "38"}
)

// DoorSizeOptions groups the selectable sizes.
type DoorSizeOptions struct {
	Widths      []string `json:"widths"`
	Heights     []string `json:"heights"`
	Thicknesses []string `json:"thicknesses"`
}

// SizeOptions returns copies of the selectable sizes.
func SizeOptions() DoorSizeOptions {
	return DoorSizeOptions{
		Widths:      append([]string(nil), doorWidths...),
		Heights:     append([]string(nil), doorHeights...),
		Thicknesses: append([]string(nil), doorThicknesses...),
	}
}

func IsValidDoorWidth(value string) bool     { return contains(doorWidths, value) }
func IsValidDoorHeight(value string) bool    { return contains(doorHeights, value) }
func IsValidDoorThickness(value string) bool { return contains(doorThicknesses, value) }

// DoorSize is a selected width, height and thickness.
type DoorSize struct {
	Width     string
	Height    string
	Thickness string
}

// Normalize trims surrounding whitespace from every dimension.
func (s DoorSize) Normalize() DoorSize {
	return DoorSize{
		Width:     strings.TrimSpace(s.Width),
		Height:    strings.TrimSpace(s.Height),
		Thickness: strings.TrimSpace(s.Thickness),
	}
}

// Validate returns, keyed by field name, every dimension that is missing or
// not an offered option.
func (s DoorSize) Validate() map[string]string {
	problems := map[string]string{}
	check := func(field, value string, valid func(string) bool) {
		switch {
		case value == "":
			problems[field] = "required"
		case !valid(value):
			problems[field] = fmt.Sprintf("unsupported %s %q", field, value)
		}
	}
	n := s.Normalize()
	check("width", n.Width, IsValidDoorWidth)
	check("height", n.Height, IsValidDoorHeight)
	check("thickness", n.Thickness, IsValidDoorThickness)
	return problems
}

func contains(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}
