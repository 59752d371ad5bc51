package contractor

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Tier orders contractors for assignment. Higher tiers are preferred.
type Tier int

// Tiers in ascending preference. UnknownTier is the zero value and never valid.
const (
	UnknownTier Tier = iota
	Bronze
	Silver
	Gold
)

// getTierStrings returns a fresh map so callers cannot mutate a shared table.
func getTierStrings() map[Tier]string {
	return map[Tier]string{
		UnknownTier: "unknown",
		Bronze:      "bronze",
		Silver:      "silver",
		Gold:        "gold",
	}
}

// ParseTier accepts the lowercase tier names stored in the contractors table.
func ParseTier(s string) (Tier, error) {
	for tier, name := range getTierStrings() {
		if tier != UnknownTier && name == s {
			return tier, nil
		}
	}
	return UnknownTier, errs.NewValueIsInvalidErrorWithCause("tier", fmt.Errorf("%q is not a tier", s))
}

// Validate rejects UnknownTier and anything above Gold.
func (t Tier) Validate() error {
	if t < Bronze || t > Gold {
		return errs.NewValueIsOutOfRangeError("tier", int(t), int(Bronze), int(Gold))
	}
	return nil
}

// String returns the lowercase name stored in the database.
//
// Example:
//
//	fmt.Println(contractor.Gold) // Output: "gold"
func (t Tier) String() string {
	if s, ok := getTierStrings()[t]; ok {
		return s
	}
	return "unknown"
}
