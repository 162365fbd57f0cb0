package estimates

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatINR renders an amount with Indian digit grouping: the last three
// integer digits form one group and the rest are grouped in pairs, e.g.
// 12,34,567.5. Up to two fraction digits are kept, trailing zeros dropped.
func FormatINR(amount decimal.Decimal) string {
	s := amount.Round(2).String()
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	frac = strings.TrimRight(frac, "0")

	grouped := groupIndian(intPart)
	if frac != "" {
		grouped += "." + frac
	}
	return sign + grouped
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}
