package allocation

import (
	"testing"

	"railway-backend/internal/domain/models"
)

func TestRACQuotaFloors(t *testing.T) {
	cases := []struct {
		capacity int
		want     int
	}{
		{0, 0}, {1, 0}, {2, 0}, {9, 0}, {10, 1}, {19, 1}, {20, 2}, {72, 7}, {100, 10},
	}
	for _, tc := range cases {
		if got := RACQuota(tc.capacity, DefaultRACQuota); got != tc.want {
			t.Fatalf("RACQuota(%d) = %d, want %d", tc.capacity, got, tc.want)
		}
	}
}

func TestDecideConfirmedWhileSeatsLeft(t *testing.T) {
	got := Decide(2, DefaultRACQuota, models.BucketCounts{})
	if got.Status != models.StatusConfirmed || got.Ordinal != 1 {
		t.Fatalf("got %+v, want Confirmed/1", got)
	}
}

func TestDecideSmallClassSkipsRAC(t *testing.T) {
	// floor(2 × 0.10) = 0, so the third booking on a 2-seat class waitlists.
	got := Decide(2, DefaultRACQuota, models.BucketCounts{Confirmed: 2})
	if got.Status != models.StatusWaitlist || got.Ordinal != 1 {
		t.Fatalf("got %+v, want Waitlist/1", got)
	}
}

func TestDecideRACThenWaitlist(t *testing.T) {
	got := Decide(20, DefaultRACQuota, models.BucketCounts{Confirmed: 20})
	if got.Status != models.StatusRAC || got.Ordinal != 1 {
		t.Fatalf("got %+v, want RAC/1", got)
	}
	got = Decide(20, DefaultRACQuota, models.BucketCounts{Confirmed: 20, RAC: 1})
	if got.Status != models.StatusRAC || got.Ordinal != 2 {
		t.Fatalf("got %+v, want RAC/2", got)
	}
	got = Decide(20, DefaultRACQuota, models.BucketCounts{Confirmed: 20, RAC: 2, Waitlist: 4})
	if got.Status != models.StatusWaitlist || got.Ordinal != 5 {
		t.Fatalf("got %+v, want Waitlist/5", got)
	}
}

func TestDecideRACHoldersBlockFreedConfirmedSeat(t *testing.T) {
	// One confirmed seat was cancelled but an RAC passenger still holds a slot.
	got := Decide(20, DefaultRACQuota, models.BucketCounts{Confirmed: 19, RAC: 1})
	if got.Status != models.StatusRAC || got.Ordinal != 2 {
		t.Fatalf("got %+v, want RAC/2", got)
	}
}

func TestDecideSequentialRespectsQuotas(t *testing.T) {
	const capacity = 30
	var counts models.BucketCounts
	for i := 0; i < 50; i++ {
		a := Decide(capacity, DefaultRACQuota, counts)
		switch a.Status {
		case models.StatusConfirmed:
			counts.Confirmed++
			if a.Ordinal != counts.Confirmed {
				t.Fatalf("confirmed ordinal %d, want %d", a.Ordinal, counts.Confirmed)
			}
		case models.StatusRAC:
			counts.RAC++
			if a.Ordinal != counts.RAC {
				t.Fatalf("rac ordinal %d, want %d", a.Ordinal, counts.RAC)
			}
		case models.StatusWaitlist:
			counts.Waitlist++
			if a.Ordinal != counts.Waitlist {
				t.Fatalf("waitlist ordinal %d, want %d", a.Ordinal, counts.Waitlist)
			}
		}
	}
	if counts.Confirmed != 30 || counts.RAC != 3 || counts.Waitlist != 17 {
		t.Fatalf("unexpected counts %+v", counts)
	}
}

func TestNextOrdinal(t *testing.T) {
	if got := NextOrdinal(3, 2); got != 3 {
		t.Fatalf("NextOrdinal(3,2) = %d, want 3", got)
	}
	// S-002 was cancelled after S-003 was issued: live count gives 3 again.
	if got := NextOrdinal(3, 3); got != 4 {
		t.Fatalf("NextOrdinal(3,3) = %d, want 4", got)
	}
	if got := NextOrdinal(1, 0); got != 1 {
		t.Fatalf("NextOrdinal(1,0) = %d, want 1", got)
	}
}
