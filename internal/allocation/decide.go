// Package allocation holds the pure seat allocation rules: status decision,
// seat numbering and refund tiers. Nothing here touches the store.
package allocation

import (
	"math"

	"railway-backend/internal/domain/models"
)

// DefaultRACQuota is the fraction of class capacity held as RAC.
const DefaultRACQuota = 0.10

type Allocation struct {
	Status  models.TicketStatus
	Ordinal int
}

// RACQuota returns floor(capacity × fraction). The epsilon keeps products such
// as 10×0.1 from flooring to 0 through float error.
func RACQuota(capacity int, fraction float64) int {
	if capacity <= 0 || fraction <= 0 {
		return 0
	}
	return int(math.Floor(float64(capacity)*fraction + 1e-9))
}

// Decide picks the status for the next passenger of a bucket and its 1-based
// position within that status. Confirmed and RAC tickets together are checked
// against the class capacity.
func Decide(capacity int, racFraction float64, counts models.BucketCounts) Allocation {
	if counts.Held() < capacity {
		return Allocation{Status: models.StatusConfirmed, Ordinal: counts.Confirmed + 1}
	}
	if counts.RAC < RACQuota(capacity, racFraction) {
		return Allocation{Status: models.StatusRAC, Ordinal: counts.RAC + 1}
	}
	return Allocation{Status: models.StatusWaitlist, Ordinal: counts.Waitlist + 1}
}

// NextOrdinal never hands out an ordinal at or below one already issued in
// the same status, so seat codes freed by cancellation are not reused.
func NextOrdinal(decided, lastIssued int) int {
	if lastIssued+1 > decided {
		return lastIssued + 1
	}
	return decided
}
