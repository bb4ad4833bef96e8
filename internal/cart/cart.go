package cart

import (
	"errors"

	"github.com/rxline/pharmaflow/internal/drugs"
)

var (
	// ErrOutOfStock rejects an add for a record with no stock left. Callers
	// surface it as a warning; the cart itself is untouched.
	ErrOutOfStock = errors.New("drug is out of stock")
	// ErrOutOfRange indicates a line index that does not exist.
	ErrOutOfRange = errors.New("cart line index out of range")
	// ErrInvalidQuantity rejects a quantity below 1. The line keeps its
	// previous quantity.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Line is one aggregated cart entry. Name, UnitPrice, BatchNo, ExpDate and
// SellerID are snapshots taken when the drug was first added; they are never
// re-synced against the store afterwards.
type Line struct {
	DrugID    string  `json:"drug_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	BatchNo   string  `json:"batch_no"`
	ExpDate   string  `json:"exp_date"`
	SellerID  string  `json:"seller_id"`
	Category  string  `json:"category,omitempty"` // empty until assigned
}

// Cart is the per-session order draft. It is exclusively owned by one session
// and mutated only from that session's requests, so it carries no lock of its
// own.
type Cart struct {
	lines []Line
	notes string
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// AddItem merges the drug into the cart: an existing line for the same DrugID
// gains one unit, otherwise a new line with quantity 1 is appended with
// price/batch/expiry/seller snapshotted now. Records with no stock are
// rejected with ErrOutOfStock and the cart is left unchanged.
func (c *Cart) AddItem(d drugs.Drug) error {
	if d.Stock <= 0 {
		return ErrOutOfStock
	}
	for i := range c.lines {
		if c.lines[i].DrugID == d.DrugID {
			c.lines[i].Quantity++
			return nil
		}
	}
	c.lines = append(c.lines, Line{
		DrugID:    d.DrugID,
		Name:      d.Name,
		Quantity:  1,
		UnitPrice: d.Price,
		BatchNo:   d.BatchNo,
		ExpDate:   d.ExpDate,
		SellerID:  d.CreatedBy,
	})
	return nil
}

// RemoveItem deletes the line at index.
func (c *Cart) RemoveItem(index int) error {
	if index < 0 || index >= len(c.lines) {
		return ErrOutOfRange
	}
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	return nil
}

// SetQuantity overwrites the line's quantity. Quantities below 1 are rejected
// and the line is left as it was.
func (c *Cart) SetQuantity(index, quantity int) error {
	if index < 0 || index >= len(c.lines) {
		return ErrOutOfRange
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	c.lines[index].Quantity = quantity
	return nil
}

// SetCategory overwrites the line's category. Any value is accepted here;
// category validity is enforced at submission time, not at set time.
func (c *Cart) SetCategory(index int, category string) error {
	if index < 0 || index >= len(c.lines) {
		return ErrOutOfRange
	}
	c.lines[index].Category = category
	return nil
}

// Total returns the sum of quantity x unit price over all lines, recomputed
// fresh on every call. Rounding to 2 places happens at presentation time only.
func (c *Cart) Total() float64 {
	var sum float64
	for _, l := range c.lines {
		sum += float64(l.Quantity) * l.UnitPrice
	}
	return sum
}

// Lines returns a copy of the cart's lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of lines.
func (c *Cart) Len() int { return len(c.lines) }

// Notes returns the free-text order notes.
func (c *Cart) Notes() string { return c.notes }

// SetNotes overwrites the free-text order notes.
func (c *Cart) SetNotes(notes string) { c.notes = notes }

// Clear empties the lines and resets the notes. Called only after a confirmed
// successful submission.
func (c *Cart) Clear() {
	c.lines = nil
	c.notes = ""
}
