package enums

import "fmt"

// OrderKind distinguishes orders that require print production from stock
// merchandise orders.
type OrderKind string

const (
	OrderKindPrint OrderKind = "print"
	OrderKindStock OrderKind = "stock"
	OrderKindMixed OrderKind = "mixed"
)

var validOrderKinds = []OrderKind{
	OrderKindPrint,
	OrderKindStock,
	OrderKindMixed,
}

// String implements fmt.Stringer.
func (o OrderKind) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderKind.
func (o OrderKind) IsValid() bool {
	for _, candidate := range validOrderKinds {
		if candidate == o {
			return true
		}
	}
	return false
}

// RequiresProduction reports whether the kind alone marks the order as
// print work regardless of its line items.
func (o OrderKind) RequiresProduction() bool {
	return o == OrderKindPrint || o == OrderKindMixed
}

// ParseOrderKind converts raw input into an OrderKind.
func ParseOrderKind(value string) (OrderKind, error) {
	for _, candidate := range validOrderKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order kind %q", value)
}
