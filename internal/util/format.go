package util

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// FormatTokensInt formats an int64 token count with K/M suffix for readability.
// Examples: 500 -> "500", 1500 -> "1.5K", 1500000 -> "1.5M"
func FormatTokensInt(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// FormatCompact formats a count with a whole K/M suffix, rounding half up.
// Examples: 999 -> "999", 120400 -> "120K", 200000 -> "200K", 1000000 -> "1M"
func FormatCompact(n int64) string {
	switch {
	case n < 1000:
		return fmt.Sprintf("%d", n)
	case n < 1000000:
		return fmt.Sprintf("%dK", int64(math.Floor(float64(n)/1000+0.5)))
	default:
		return fmt.Sprintf("%dM", int64(math.Floor(float64(n)/1000000+0.5)))
	}
}

// FormatDuration formats elapsed time as "<1m", "45m", "2hr" or "2hr 15m".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return "<1m"
	}
	total := int64(d / time.Minute)
	hours, minutes := total/60, total%60
	switch {
	case hours == 0:
		return fmt.Sprintf("%dm", minutes)
	case minutes == 0:
		return fmt.Sprintf("%dhr", hours)
	default:
		return fmt.Sprintf("%dhr %dm", hours, minutes)
	}
}

// FormatUSD formats an amount with two decimals, e.g. "$1.23".
func FormatUSD(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// FormatDateTime formats a time as "2006-01-02 15:04" in local time.
func FormatDateTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

// ParseTimeSQLite parses a SQLite datetime or RFC3339 string to time.Time.
// Handles "YYYY-MM-DD HH:MM:SS" (SQLite) and RFC3339 formats.
// Returns zero time if parsing fails.
func ParseTimeSQLite(s string) time.Time {
	// Try SQLite datetime format first (most common from DB)
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	// Fall back to RFC3339
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
