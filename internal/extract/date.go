package extract

import (
	"strconv"
	"strings"
	"time"

	"github.com/expensio/expense-docai/internal/docai"
)

// DecodeDate resolves a receipt_date entity to a calendar date. The structured
// normalizedValue.dateValue wins when all three fields are set; otherwise the
// raw mention text is parsed as month/day/year. Returns ok=false on any
// failure; a missing date never aborts an extraction.
func DecodeDate(e docai.Entity) (time.Time, bool) {
	if nv := e.NormalizedValue; nv != nil && nv.DateValue != nil {
		dv := nv.DateValue
		if dv.Year != 0 && dv.Month != 0 && dv.Day != 0 {
			return civilDate(dv.Year, dv.Month, dv.Day)
		}
	}
	return ParseMDY(e.MentionText)
}

// ParseMDY parses free-text "month/day/year". The positional order matches the
// upstream locale; it is NOT ISO order.
func ParseMDY(s string) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) < 3 {
		return time.Time{}, false
	}
	nums := make([]int, 3)
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}
	return civilDate(nums[2], nums[0], nums[1])
}

// civilDate builds a midnight-UTC date, rejecting components that time.Date
// would silently normalize (month 15, day 32, ...).
func civilDate(year, month, day int) (time.Time, bool) {
	if year < 1 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
