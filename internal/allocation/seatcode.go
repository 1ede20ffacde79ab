package allocation

import (
	"fmt"
	"strings"

	"railway-backend/internal/domain"
	"railway-backend/internal/domain/models"
)

// MaxSeatCodeLen is the width of tickets.seat_number.
const MaxSeatCodeLen = 10

// Scheme selects the RAC/Waitlist code format.
type Scheme string

const (
	SchemeShort Scheme = "short" // R-01, W-001
	SchemeLong  Scheme = "long"  // RAC/01, WL/001
)

func ParseScheme(s string) (Scheme, bool) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", SchemeShort:
		return SchemeShort, true
	case SchemeLong:
		return SchemeLong, true
	}
	return "", false
}

var classAbbr = map[models.ClassType]string{
	models.ClassSleeper: "S",
	models.ClassAC3:     "A3",
	models.ClassAC2:     "A2",
	models.ClassFirst:   "F",
}

// FormatSeat renders the seat/berth code for an allocation. Ordinals that do
// not fit the fixed width are rejected, never truncated.
func FormatSeat(scheme Scheme, class models.ClassType, status models.TicketStatus, ordinal int) (string, error) {
	if ordinal < 1 {
		return "", domain.ValidationError{Field: "ordinal", Msg: fmt.Sprintf("must be positive, got %d", ordinal)}
	}

	var prefix string
	var width int
	switch status {
	case models.StatusConfirmed:
		abbr, ok := classAbbr[class]
		if !ok {
			return "", domain.ValidationError{Field: "classType", Msg: fmt.Sprintf("unknown class %q", class)}
		}
		prefix, width = abbr+"-", 3
	case models.StatusRAC:
		prefix, width = "R-", 2
		if scheme == SchemeLong {
			prefix = "RAC/"
		}
	case models.StatusWaitlist:
		prefix, width = "W-", 3
		if scheme == SchemeLong {
			prefix = "WL/"
		}
	default:
		return "", domain.ValidationError{Field: "status", Msg: fmt.Sprintf("%q has no seat code", status)}
	}

	if limit := maxOrdinal(width); ordinal > limit {
		return "", domain.OverflowError{Ordinal: ordinal, Limit: limit}
	}
	code := fmt.Sprintf("%s%0*d", prefix, width, ordinal)
	if len(code) > MaxSeatCodeLen {
		return "", domain.OverflowError{Code: code, Limit: MaxSeatCodeLen}
	}
	return code, nil
}

func maxOrdinal(width int) int {
	n := 1
	for i := 0; i < width; i++ {
		n *= 10
	}
	return n - 1
}
