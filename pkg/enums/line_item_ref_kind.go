package enums

import "fmt"

// LineItemRefKind identifies what catalog entity a line item points at.
type LineItemRefKind string

const (
	LineItemRefBook        LineItemRefKind = "book"
	LineItemRefMaterial    LineItemRefKind = "material"
	LineItemRefProduct     LineItemRefKind = "product"
	LineItemRefPrintOption LineItemRefKind = "print_option"
)

var validLineItemRefKinds = []LineItemRefKind{
	LineItemRefBook,
	LineItemRefMaterial,
	LineItemRefProduct,
	LineItemRefPrintOption,
}

// String implements fmt.Stringer.
func (l LineItemRefKind) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LineItemRefKind.
func (l LineItemRefKind) IsValid() bool {
	for _, candidate := range validLineItemRefKinds {
		if candidate == l {
			return true
		}
	}
	return false
}

// RequiresProduction reports whether a line item of this kind needs print
// production. Stock products ship as-is; everything else goes to a print
// center.
func (l LineItemRefKind) RequiresProduction() bool {
	switch l {
	case LineItemRefBook, LineItemRefMaterial, LineItemRefPrintOption:
		return true
	case LineItemRefProduct:
		return false
	}
	return false
}

// ParseLineItemRefKind converts raw input into a LineItemRefKind.
func ParseLineItemRefKind(value string) (LineItemRefKind, error) {
	for _, candidate := range validLineItemRefKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid line item reference kind %q", value)
}
