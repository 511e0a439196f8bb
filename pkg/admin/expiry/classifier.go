// Package expiry buckets registrations by how close they are to lapsing.
//
// Days remaining is ceil((expiry - now) / 24h) on the raw millisecond
// difference. It is deliberately not normalised to calendar midnight, so the
// same record can move between buckets during a single day.
package expiry

import (
	"math"
	"time"

	"regdesk-be/internal/entity"
)

const DefaultSoonWindowDays = 3

type Bucket string

const (
	BucketApprovedExempt Bucket = "approved-exempt"
	BucketNoExpiry       Bucket = "no-expiry"
	BucketExpired        Bucket = "expired"
	BucketExpiringSoon   Bucket = "expiring-soon"
	BucketNormal         Bucket = "normal"
)

const msPerDay = float64(24 * time.Hour / time.Millisecond)

// DaysRemaining rounds toward more time remaining: 30.1 days reports 31.
func DaysRemaining(expiry, now time.Time) int {
	diff := float64(expiry.Sub(now).Milliseconds())
	return int(math.Ceil(diff / msPerDay))
}

// Classifier carries the expiring-soon window explicitly.
type Classifier struct {
	SoonWindowDays int
}

func NewClassifier(soonWindowDays int) Classifier {
	if soonWindowDays <= 0 {
		soonWindowDays = DefaultSoonWindowDays
	}
	return Classifier{SoonWindowDays: soonWindowDays}
}

// Classify places a record in exactly one bucket. Approved records are
// exempt regardless of their expiry date.
func (c Classifier) Classify(status entity.RegistrationStatus, expiry *time.Time, now time.Time) Bucket {
	if status == entity.RegistrationStatusApproved {
		return BucketApprovedExempt
	}
	if expiry == nil {
		return BucketNoExpiry
	}

	days := DaysRemaining(*expiry, now)
	switch {
	case days <= 0:
		return BucketExpired
	case days <= c.window():
		return BucketExpiringSoon
	default:
		return BucketNormal
	}
}

func (c Classifier) window() int {
	if c.SoonWindowDays <= 0 {
		return DefaultSoonWindowDays
	}
	return c.SoonWindowDays
}

// Classify uses the default three day window.
func Classify(status entity.RegistrationStatus, expiry *time.Time, now time.Time) Bucket {
	return Classifier{SoonWindowDays: DefaultSoonWindowDays}.Classify(status, expiry, now)
}

// MatchesThreshold is the ad-hoc admin filter. Threshold 0 means "already
// expired" and matches any days <= 0; any other n matches 0 <= days <= n.
// Approved records and records without an expiry never match.
func MatchesThreshold(status entity.RegistrationStatus, expiry *time.Time, now time.Time, n int) bool {
	if status == entity.RegistrationStatusApproved || expiry == nil {
		return false
	}
	days := DaysRemaining(*expiry, now)
	if n == 0 {
		return days <= 0
	}
	return days >= 0 && days <= n
}
