package jobutil

import (
	"regexp"
	"strconv"
	"strings"

	"jobpilot/crawler-service/internal/model"
)

// salaryRangeRe matches numeric ranges like "$80k-$120k", "90,000 - 120,000",
// "100-140k EUR". The optional trailing token is an uppercase ISO currency
// code.
var salaryRangeRe = regexp.MustCompile(
	`\$?\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s*([kK])?\s*(?:-|–|—|\bto\b)\s*\$?\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s*([kK])?(?:\s+([A-Z]{3})\b)?`)

// ExtractSalary scans free text for a salary range. It returns nil when no
// range is present; arbitrary text is never an error. Values carrying a
// k/K suffix are scaled ×1000 when below 1000, so "$80k" and "$80,000" agree.
// Currency defaults to USD when the text names none.
func ExtractSalary(text string) *model.Salary {
	m := salaryRangeRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	// a k on either end scales both: "$90-130k" means 90,000–130,000
	thousands := m[2] != "" || m[4] != ""
	min, ok := parseSalaryValue(m[1], thousands)
	if !ok {
		return nil
	}
	max, ok := parseSalaryValue(m[3], thousands)
	if !ok {
		return nil
	}

	currency := m[5]
	if currency == "" {
		currency = "USD"
	}
	return &model.Salary{Min: min, Max: max, Currency: currency}
}

func parseSalaryValue(raw string, thousands bool) (int, bool) {
	raw = strings.ReplaceAll(raw, ",", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	if thousands && v < 1000 {
		v *= 1000
	}
	return int(v), true
}
