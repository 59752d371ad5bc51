package kernel

import (
	"fmt"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrMoneyIsNotConstructed is returned by Validate for the zero value.
var ErrMoneyIsNotConstructed = errs.NewValueIsRequiredError("money must be created via NewMoney")

// Money is a non-negative amount in cents. Bid amounts, reserve prices and the
// agreed job price use it.
type Money struct {
	cents int64
	guard guard.ConstructorGuard
}

// NewMoney rejects negative amounts. Zero is a valid amount; callers that need a
// positive price check IsZero themselves.
//
// Example:
//
//	price, err := kernel.NewMoney(9950)
//	fmt.Println(price) // $99.50
func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("%d cents is negative", cents))
	}
	return Money{cents: cents, guard: guard.NewConstructorGuard()}, nil
}

// Validate returns ErrMoneyIsNotConstructed for the zero value.
func (m Money) Validate() error {
	return m.guard.Validate(ErrMoneyIsNotConstructed)
}

// Cents returns the amount in cents, the unit stored in the database.
func (m Money) Cents() int64 {
	return m.cents
}

// IsZero reports a zero amount. Bids reject it; a reserve price of zero is allowed.
func (m Money) IsZero() bool {
	return m.cents == 0
}

// Compare returns -1, 0 or 1 when m is less than, equal to or greater than other.
func (m Money) Compare(other Money) int {
	switch {
	case m.cents < other.cents:
		return -1
	case m.cents > other.cents:
		return 1
	default:
		return 0
	}
}

// String formats the amount as dollars and cents.
//
// Example:
//
//	m, _ := kernel.NewMoney(5)
//	fmt.Println(m) // $0.05
func (m Money) String() string {
	return fmt.Sprintf("$%d.%02d", m.cents/100, m.cents%100)
}
