package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	id "warden/pkg/domain"
)

// Charge is a one-off payment handed to a processor.
type Charge struct {
	UserID      id.UserID
	AmountCents int64
	Currency    string
	Country     string
	Reference   string
}

// Subscription is a recurring charge handed to a processor.
type Subscription struct {
	UserID      id.UserID
	AmountCents int64
	Currency    string
	Country     string
	Interval    string
	Reference   string
}

type Receipt struct {
	ProcessorID string
	Reference   string
	Status      string
	ProcessedAt time.Time
}

// Processor is a payment processor's capability surface. Variants are
// independent implementations selected through a Registry.
type Processor interface {
	ID() string
	ProcessPayment(ctx context.Context, charge Charge) (Receipt, error)
	ProcessSubscription(ctx context.Context, sub Subscription) (Receipt, error)
	SupportsCountry(countryCode string) bool
}

// Registry is an ordered table of processors. Selection returns the first
// registered processor that serves a country.
type Registry struct {
	mu    sync.RWMutex
	order []Processor
	byID  map[string]Processor
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Processor)}
}

// Register appends p to the selection order.
func (r *Registry) Register(p Processor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[p.ID()]; exists {
		return fmt.Errorf("processor %s already registered", p.ID())
	}
	r.byID[p.ID()] = p
	r.order = append(r.order, p)
	return nil
}

func (r *Registry) Get(processorID string) (Processor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[processorID]
	return p, ok
}

// ForCountry selects the processor for countryCode.
func (r *Registry) ForCountry(countryCode string) (Processor, bool) {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.order {
		if p.SupportsCountry(code) {
			return p, true
		}
	}
	return nil, false
}

// All returns processors in selection order.
func (r *Registry) All() []Processor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Processor(nil), r.order...)
}
