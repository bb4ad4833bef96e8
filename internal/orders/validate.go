package orders

import (
	"errors"

	"github.com/rxline/pharmaflow/internal/cart"
	"github.com/rxline/pharmaflow/internal/drugs"
)

var (
	// ErrEmptyCart blocks submission of a cart with zero lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNoInstitute blocks submission when no recipient institute is linked
	// to the submitting account.
	ErrNoInstitute = errors.New("no institute linked to account")
	// ErrInvalidCategory blocks submission when any line's category is not
	// one of the recognized values.
	ErrInvalidCategory = errors.New("line category missing or invalid")
)

// ValidateCart is the submission gate: it checks the cart against the linked
// recipient and, on success, produces the payload for the gateway. It is pure;
// nothing is mutated and no network call happens here. Validation failures are
// surfaced before the gateway is ever invoked.
func ValidateCart(c *cart.Cart, recipientID string) (SubmissionPayload, error) {
	if c.Len() == 0 {
		return SubmissionPayload{}, ErrEmptyCart
	}
	if recipientID == "" {
		return SubmissionPayload{}, ErrNoInstitute
	}
	lines := c.Lines()
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		if !drugs.ValidCategory(l.Category) {
			return SubmissionPayload{}, ErrInvalidCategory
		}
		items = append(items, Item{
			DrugID:   l.DrugID,
			Quantity: l.Quantity,
			Category: l.Category,
		})
	}
	return SubmissionPayload{
		RecipientID: recipientID,
		Items:       items,
		Notes:       c.Notes(),
	}, nil
}
