package rest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/feral-file/ff-registry/internal/domain"
)

// DEFAULT_PAYER_HEADER is set by the settlement gateway once a payment is verified
const DEFAULT_PAYER_HEADER = "X-Payment-Payer"

// PaymentResolver identifies the address that paid for a request.
// It returns "" when the request carries no payment.
//
//go:generate mockgen -source=payment.go -destination=../../mocks/payment_resolver.go -package=mocks -mock_names=PaymentResolver=MockPaymentResolver
type PaymentResolver interface {
	ResolvePayer(r *http.Request) (string, error)
}

// HeaderPaymentResolver reads the payer address from a header written by an upstream gateway
type HeaderPaymentResolver struct {
	header string
}

// NewHeaderPaymentResolver creates a resolver reading header, or DEFAULT_PAYER_HEADER when empty
func NewHeaderPaymentResolver(header string) *HeaderPaymentResolver {
	if header == "" {
		header = DEFAULT_PAYER_HEADER
	}
	return &HeaderPaymentResolver{header: header}
}

// Header returns the header name the resolver reads
func (p *HeaderPaymentResolver) Header() string {
	return p.header
}

func (p *HeaderPaymentResolver) ResolvePayer(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get(p.header))
	if raw == "" {
		return "", nil
	}
	payer, err := domain.NormalizeAddress(raw)
	if err != nil {
		return "", fmt.Errorf("payer: %w", err)
	}
	return payer, nil
}
