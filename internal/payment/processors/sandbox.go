// Package processors holds payment processor variants.
package processors

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"warden/internal/payment"
	platformstrings "warden/pkg/platform/strings"
)

// Sandbox accepts every well-formed charge for its countries and issues a
// synthetic reference. An empty country list serves everywhere.
type Sandbox struct {
	name      string
	countries map[string]struct{}
	now       func() time.Time
}

func NewSandbox(name string, countries ...string) *Sandbox {
	s := &Sandbox{name: name, countries: map[string]struct{}{}, now: time.Now}
	for _, c := range platformstrings.NormalizeCountryCodes(countries) {
		s.countries[c] = struct{}{}
	}
	return s
}

func (s *Sandbox) ID() string { return s.name }

func (s *Sandbox) SupportsCountry(countryCode string) bool {
	if len(s.countries) == 0 {
		return true
	}
	_, ok := s.countries[platformstrings.NormalizeCountryCode(countryCode)]
	return ok
}

func (s *Sandbox) ProcessPayment(ctx context.Context, charge payment.Charge) (payment.Receipt, error) {
	if err := s.check(ctx, charge.AmountCents, charge.Country); err != nil {
		return payment.Receipt{}, err
	}
	return s.receipt(charge.Reference, "captured"), nil
}

func (s *Sandbox) ProcessSubscription(ctx context.Context, sub payment.Subscription) (payment.Receipt, error) {
	if err := s.check(ctx, sub.AmountCents, sub.Country); err != nil {
		return payment.Receipt{}, err
	}
	if sub.Interval == "" {
		return payment.Receipt{}, errors.New("subscription interval is required")
	}
	return s.receipt(sub.Reference, "active"), nil
}

func (s *Sandbox) check(ctx context.Context, amount int64, country string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount <= 0 {
		return errors.New("amount must be positive")
	}
	if !s.SupportsCountry(country) {
		return errors.New(s.name + " does not serve " + country)
	}
	return nil
}

func (s *Sandbox) receipt(reference, status string) payment.Receipt {
	if reference == "" {
		reference = uuid.NewString()
	}
	return payment.Receipt{
		ProcessorID: s.name,
		Reference:   reference,
		Status:      status,
		ProcessedAt: s.now(),
	}
}
