package ledger

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/Chixide1/ZenWealth-sub001/src/models"
)

const dateLayout = "2006-01-02"

// Cursor marks the last row returned to the client: its local id plus the
// sort-key value under the cursor's sort mode. Clients hold it as one opaque
// token so they cannot construct an inconsistent (id, key, mode) triple.
type Cursor struct {
	ID     int64    `json:"id"`
	Date   string   `json:"date,omitempty"`
	Amount float64  `json:"amount,omitempty"`
	Sort   SortMode `json:"sort"`
}

// CursorFor builds the cursor pointing at t under the given sort mode.
func CursorFor(mode SortMode, t *models.Transaction) Cursor {
	c := Cursor{ID: t.ID, Sort: mode}
	if mode.byAmount() {
		c.Amount = t.Amount
	} else {
		c.Date = t.Date.Format(dateLayout)
	}
	return c
}

// EncodeCursor serializes a cursor into an opaque URL-safe token.
func EncodeCursor(c Cursor) string {
	raw, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses a client-held token. Malformed tokens, and tokens minted
// under a different sort mode, decode to nil meaning "start of the ordering";
// a bad cursor is never a fatal error.
func DecodeCursor(token string, mode SortMode) *Cursor {
	if token == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil
	}
	if c.Sort != mode || c.ID == 0 {
		return nil
	}
	if !mode.byAmount() {
		// Date modes bind the key straight into the query, so an absent or
		// unparsable date must mean "start", not a cast error downstream.
		if _, err := time.Parse(dateLayout, c.Date); err != nil {
			return nil
		}
	}
	return &c
}
