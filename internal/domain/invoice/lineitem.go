package invoice

import (
	"encoding/json"

	ierr "github.com/medicore/medicore/internal/errors"
	"github.com/shopspring/decimal"
)

// LineItem is a single charge on an invoice, e.g. a consultation, bed day or
// lab test. The persistence layer stores the ordered collection as an opaque
// JSON blob; the engine only parses it at the API boundary and during
// consolidation.
type LineItem struct {
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

func (li *LineItem) Validate() error {
	if li.Name == "" {
		return ierr.NewError("line item validation failed").
			WithHint("Line item name is required").
			Mark(ierr.ErrValidation)
	}

	if li.Quantity.IsNegative() || li.UnitPrice.IsNegative() || li.Total.IsNegative() {
		return ierr.NewError("line item validation failed").
			WithHint("Line item quantity and amounts must be non-negative").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// MarshalLineItems serializes an ordered line item collection to its stored
// blob form. An empty collection serializes to an empty JSON array.
func MarshalLineItems(items []LineItem) (string, error) {
	if items == nil {
		items = []LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to serialize line items").
			Mark(ierr.ErrSystem)
	}
	return string(raw), nil
}

// UnmarshalLineItems parses the stored blob form back into an ordered
// collection. A blank blob yields an empty collection.
func UnmarshalLineItems(blob string) ([]LineItem, error) {
	if blob == "" {
		return []LineItem{}, nil
	}
	var items []LineItem
	if err := json.Unmarshal([]byte(blob), &items); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to parse stored line items").
			Mark(ierr.ErrSystem)
	}
	return items, nil
}
