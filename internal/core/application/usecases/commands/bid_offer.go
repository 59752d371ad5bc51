package commands

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

const maxBidMessageLength = 2000

// bidOffer is the price, time and message part shared by bid commands.
type bidOffer struct {
	amount            kernel.Money
	estimatedDuration *time.Duration
	message           string
}

// newBidOffer checks the amount, the estimate and the message and reports every
// problem at once.
func newBidOffer(amountCents int64, estimatedDuration *time.Duration, message string) (bidOffer, error) {
	amount, amountErr := kernel.NewMoney(amountCents)
	if amountErr == nil && amount.IsZero() {
		amountErr = errs.NewValueIsInvalidErrorWithCause("bidAmount", errors.New("must be greater than zero"))
	}

	var durationErr error
	if estimatedDuration != nil && *estimatedDuration <= 0 {
		durationErr = errs.NewValueIsInvalidErrorWithCause("estimatedDuration",
			fmt.Errorf("%s is not positive", *estimatedDuration))
	}

	var messageErr error
	if utf8.RuneCountInString(message) > maxBidMessageLength {
		messageErr = errs.NewValueIsOutOfRangeError("message length", utf8.RuneCountInString(message), 0, maxBidMessageLength)
	}

	if err := errors.Join(amountErr, durationErr, messageErr); err != nil {
		return bidOffer{}, err
	}

	offer := bidOffer{amount: amount, message: message}
	if estimatedDuration != nil {
		d := *estimatedDuration
		offer.estimatedDuration = &d
	}
	return offer, nil
}

// Amount, EstimatedDuration and Message expose the validated offer.
func (o bidOffer) Amount() kernel.Money              { return o.amount }
func (o bidOffer) EstimatedDuration() *time.Duration { return o.estimatedDuration }
func (o bidOffer) Message() string                   { return o.message }
