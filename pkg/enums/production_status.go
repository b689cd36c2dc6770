package enums

import "fmt"

// ProductionStatus tracks the lifecycle of a production assignment at a
// print center.
type ProductionStatus string

const (
	ProductionStatusPending        ProductionStatus = "pending"
	ProductionStatusAccepted       ProductionStatus = "accepted"
	ProductionStatusPrinting       ProductionStatus = "printing"
	ProductionStatusReadyForPickup ProductionStatus = "ready_for_pickup"
	ProductionStatusCompleted      ProductionStatus = "completed"
	ProductionStatusCancelled      ProductionStatus = "cancelled"
)

var validProductionStatuses = []ProductionStatus{
	ProductionStatusPending,
	ProductionStatusAccepted,
	ProductionStatusPrinting,
	ProductionStatusReadyForPickup,
	ProductionStatusCompleted,
	ProductionStatusCancelled,
}

// String implements fmt.Stringer.
func (p ProductionStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductionStatus.
func (p ProductionStatus) IsValid() bool {
	for _, candidate := range validProductionStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the assignment can no longer change state.
func (p ProductionStatus) IsTerminal() bool {
	return p == ProductionStatusCompleted || p == ProductionStatusCancelled
}

// Rank returns the forward ordering of the production pipeline. Cancelled
// has no rank; it is reachable from any non-terminal status.
func (p ProductionStatus) Rank() int {
	switch p {
	case ProductionStatusPending:
		return 0
	case ProductionStatusAccepted:
		return 1
	case ProductionStatusPrinting:
		return 2
	case ProductionStatusReadyForPickup:
		return 3
	case ProductionStatusCompleted:
		return 4
	default:
		return -1
	}
}

// ParseProductionStatus converts raw input into a ProductionStatus.
func ParseProductionStatus(value string) (ProductionStatus, error) {
	for _, candidate := range validProductionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid production status %q", value)
}
