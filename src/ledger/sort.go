package ledger

import (
	"time"

	"github.com/Chixide1/ZenWealth-sub001/src/models"
)

// SortMode selects the total order rows are paged in. Every mode orders by
// (sort key, local id) with the tie-break direction matching the sort key's
// direction, so the cursor stays stable when many rows share a date or amount.
type SortMode string

const (
	SortDateDesc   SortMode = "date-desc"
	SortDateAsc    SortMode = "date-asc"
	SortAmountAsc  SortMode = "amount-asc"
	SortAmountDesc SortMode = "amount-desc"
)

// ParseSortMode maps a client-supplied string to a sort mode, falling back to
// the default order for anything unrecognized.
func ParseSortMode(s string) SortMode {
	switch SortMode(s) {
	case SortDateAsc, SortAmountAsc, SortAmountDesc:
		return SortMode(s)
	default:
		return SortDateDesc
	}
}

func (m SortMode) descending() bool {
	return m == SortDateDesc || m == SortAmountDesc
}

func (m SortMode) byAmount() bool {
	return m == SortAmountAsc || m == SortAmountDesc
}

// Less reports whether a sorts strictly before b under the mode.
func Less(mode SortMode, a, b *models.Transaction) bool {
	var before bool
	switch {
	case mode.byAmount() && a.Amount != b.Amount:
		before = a.Amount < b.Amount
	case mode.byAmount():
		before = a.ID < b.ID
	case !a.Date.Equal(b.Date):
		before = a.Date.Before(b.Date)
	default:
		before = a.ID < b.ID
	}
	if mode.descending() {
		return !before && !equalKey(mode, a, b)
	}
	return before
}

func equalKey(mode SortMode, a, b *models.Transaction) bool {
	if a.ID != b.ID {
		return false
	}
	if mode.byAmount() {
		return a.Amount == b.Amount
	}
	return a.Date.Equal(b.Date)
}

// Beyond reports whether t lies strictly beyond the cursor boundary in the
// ordering direction: sort key strictly beyond, or equal sort key and id
// strictly beyond.
func Beyond(mode SortMode, c Cursor, t *models.Transaction) bool {
	if mode.byAmount() {
		if t.Amount != c.Amount {
			if mode.descending() {
				return t.Amount < c.Amount
			}
			return t.Amount > c.Amount
		}
	} else {
		cd, err := time.Parse(dateLayout, c.Date)
		if err != nil {
			return true
		}
		if !t.Date.Equal(cd) {
			if mode.descending() {
				return t.Date.Before(cd)
			}
			return t.Date.After(cd)
		}
	}
	if mode.descending() {
		return t.ID < c.ID
	}
	return t.ID > c.ID
}
