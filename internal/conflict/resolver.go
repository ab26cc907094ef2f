package conflict

import (
	"fmt"
	"time"

	"github.com/crosslink-crm/crosslink/internal/domain"
)

// TieBreak selects the winner when both sides carry the same timestamp
type TieBreak string

const (
	// TieBreakInbound favors the side whose event is being processed
	TieBreakInbound TieBreak = "inbound"
	// TieBreakSideA always favors side A on exact ties
	TieBreakSideA TieBreak = "side_a"
	// TieBreakSideB always favors side B on exact ties
	TieBreakSideB TieBreak = "side_b"
)

// Decision is the outcome of comparing both sides of a contact
type Decision struct {
	Winner domain.Side
	Reason string
}

// timestampLayouts lists accepted remote timestamp formats, most
// specific first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a remote last-modified value. Unparseable or
// empty values map to the zero time, which always loses.
func ParseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// Resolve picks the winning side by last-writer-wins over the remote
// modification timestamps. inbound is the side whose event triggered
// the comparison and breaks exact ties under TieBreakInbound.
func Resolve(tsA, tsB string, inbound domain.Side, policy TieBreak) Decision {
	timeA := ParseTimestamp(tsA)
	timeB := ParseTimestamp(tsB)

	switch {
	case timeA.After(timeB):
		return Decision{
			Winner: domain.SideA,
			Reason: fmt.Sprintf("side a newer by %s", timeA.Sub(timeB).Round(time.Millisecond)),
		}
	case timeB.After(timeA):
		return Decision{
			Winner: domain.SideB,
			Reason: fmt.Sprintf("side b newer by %s", timeB.Sub(timeA).Round(time.Millisecond)),
		}
	}

	winner := tieWinner(inbound, policy)
	return Decision{
		Winner: winner,
		Reason: fmt.Sprintf("timestamps equal, tie break %s favors side %s", policy, winner),
	}
}

func tieWinner(inbound domain.Side, policy TieBreak) domain.Side {
	switch policy {
	case TieBreakSideA:
		return domain.SideA
	case TieBreakSideB:
		return domain.SideB
	default:
		if inbound.Valid() {
			return inbound
		}
		return domain.SideA
	}
}
