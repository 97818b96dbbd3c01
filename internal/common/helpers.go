package common

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// Backend created_at values arrive in epoch seconds from some endpoints
	// and epoch milliseconds from others. Anything below this cutoff
	// (~year 2286 in seconds, ~1970-04 in milliseconds) is seconds.
	createdAtMillisCutoff = 10_000_000_000

	// PendingTTL is the client-side implicit expiry of a pending request,
	// even if the backend still reports it pending.
	PendingTTL = time.Hour

	// ExpiringSoonAfter is the age at which a pending request starts
	// signaling "expiring soon" to the UI.
	ExpiringSoonAfter = 30 * time.Minute
)

// NormalizeCreatedAt converts a raw backend created_at value into a
// time.Time. This is the single place the seconds-vs-milliseconds heuristic
// lives; every age computation must go through it.
func NormalizeCreatedAt(raw int64) time.Time {
	if raw < createdAtMillisCutoff {
		return time.Unix(raw, 0)
	}
	return time.UnixMilli(raw)
}

// StalenessTier is a UI-only classification of a pending request's age.
type StalenessTier string

const (
	TierWaiting      StalenessTier = "waiting"       // < 30 min
	TierExpiringSoon StalenessTier = "expiring_soon" // 30-60 min
	TierExpired      StalenessTier = "expired"       // >= 60 min, excluded from active views
)

// ClassifyStaleness buckets a pending request by age.
func ClassifyStaleness(createdAt, now time.Time) StalenessTier {
	age := now.Sub(createdAt)
	switch {
	case age < ExpiringSoonAfter:
		return TierWaiting
	case age < PendingTTL:
		return TierExpiringSoon
	default:
		return TierExpired
	}
}

// ParseUSDAmount parses a USD decimal string without float precision loss.
func ParseUSDAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid USD amount %q: %w", s, err)
	}
	return d, nil
}

// FormatUSD renders a USD amount with two decimal places for display.
func FormatUSD(d decimal.Decimal) string {
	return d.StringFixed(2)
}
