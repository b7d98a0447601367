package ledger

import (
	"context"
	"time"

	"github.com/Chixide1/ZenWealth-sub001/src/models"
)

// Filters narrow the page before ordering is applied. Zero values mean "no
// constraint".
type Filters struct {
	NamePrefix        string
	MinAmount         *float64
	MaxAmount         *float64
	DateFrom          *time.Time
	DateTo            *time.Time
	ExcludeCategories []string
	ExcludeAccounts   []string
}

// Query is the bounded, totally-ordered read the store executes for one page.
// Limit is always pageSize+1 so the pager can detect whether a next page
// exists without a second query.
type Query struct {
	Sort    SortMode
	Filters Filters
	After   *Cursor
	Limit   int
}

// Page is one page of the ledger plus the token for the next one. An empty
// NextCursor means the ordering is exhausted.
type Page struct {
	Items      []models.Transaction `json:"transactions"`
	NextCursor string               `json:"next_cursor,omitempty"`
}

// Store is the read side the pager needs. It must return rows in the query's
// order, honoring the cursor boundary and the limit.
type Store interface {
	PageTransactions(ctx context.Context, userID int64, q Query) ([]models.Transaction, error)
}

// Pager is the keyset pagination engine. It has no write path and is safe for
// unlimited concurrent readers.
type Pager struct {
	store       Store
	defaultSize int
	maxSize     int
}

func NewPager(store Store, defaultSize, maxSize int) *Pager {
	return &Pager{store: store, defaultSize: defaultSize, maxSize: maxSize}
}

// Page serves one page of the user's ledger. An empty or malformed cursor
// token starts from the beginning of the ordering.
func (p *Pager) Page(ctx context.Context, userID int64, filters Filters, mode SortMode, cursorToken string, pageSize int) (*Page, error) {
	if pageSize <= 0 {
		pageSize = p.defaultSize
	}
	if pageSize > p.maxSize {
		pageSize = p.maxSize
	}

	q := Query{
		Sort:    mode,
		Filters: filters,
		After:   DecodeCursor(cursorToken, mode),
		Limit:   pageSize + 1,
	}
	rows, err := p.store.PageTransactions(ctx, userID, q)
	if err != nil {
		return nil, err
	}

	page := &Page{Items: rows}
	if len(rows) > pageSize {
		// The extra row only proves a next page exists; the cursor points at
		// the last row actually returned.
		page.Items = rows[:pageSize]
		page.NextCursor = EncodeCursor(CursorFor(mode, &page.Items[pageSize-1]))
	}
	if page.Items == nil {
		page.Items = []models.Transaction{}
	}
	return page, nil
}
