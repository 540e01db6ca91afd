package enums

import "fmt"

// SwitchState models the vendor-switch confirmation flow for a cart. A
// conflicting add parks the cart in pending_confirmation until the shopper
// confirms (replacing the cart) or cancels (leaving it untouched).
type SwitchState string

const (
	SwitchStateIdle      SwitchState = "idle"
	SwitchStatePending   SwitchState = "pending_confirmation"
	SwitchStateCommitted SwitchState = "committed"
	SwitchStateCancelled SwitchState = "cancelled"
)

var validSwitchStates = []SwitchState{
	SwitchStateIdle,
	SwitchStatePending,
	SwitchStateCommitted,
	SwitchStateCancelled,
}

// String implements fmt.Stringer.
func (s SwitchState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SwitchState.
func (s SwitchState) IsValid() bool {
	for _, candidate := range validSwitchStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSwitchState converts raw input into a SwitchState.
func ParseSwitchState(value string) (SwitchState, error) {
	for _, candidate := range validSwitchStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid switch state %q", value)
}
