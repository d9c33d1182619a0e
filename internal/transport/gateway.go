// Package transport delivers approved drafts to buyers as SMS via carrier
// email-to-SMS gateways. Each carrier exposes an email domain that relays
// the message body to the phone, which keeps delivery free of a paid SMS
// provider.
package transport

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnsupportedCarrier is returned for carriers without a known gateway.
var ErrUnsupportedCarrier = errors.New("unsupported carrier")

// carrierGateways maps carrier names to their email-to-SMS domains.
var carrierGateways = map[string]string{
	"verizon": "@vtext.com",
	"att":     "@txt.att.net",
	"tmobile": "@tmomail.net",
	"sprint":  "@messaging.sprintpcs.com",
}

// Gateway sends one SMS-sized message to a phone on a carrier.
type Gateway interface {
	Send(ctx context.Context, phone, carrier, text string) error
}

// Func adapts a plain function to the Gateway interface.
type Func func(ctx context.Context, phone, carrier, text string) error

func (f Func) Send(ctx context.Context, phone, carrier, text string) error {
	return f(ctx, phone, carrier, text)
}

// Carriers returns the supported carrier names, sorted.
func Carriers() []string {
	names := make([]string, 0, len(carrierGateways))
	for name := range carrierGateways {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidCarrier reports whether a carrier has a known gateway.
func ValidCarrier(carrier string) bool {
	_, ok := carrierGateways[strings.ToLower(strings.TrimSpace(carrier))]
	return ok
}

// GatewayAddress builds the email address that relays to the given phone.
// The phone must be 10 bare digits.
func GatewayAddress(phone, carrier string) (string, error) {
	domain, ok := carrierGateways[strings.ToLower(strings.TrimSpace(carrier))]
	if !ok {
		return "", fmt.Errorf("%w: %q (must be one of: %s)",
			ErrUnsupportedCarrier, carrier, strings.Join(Carriers(), ", "))
	}
	digits := digitsOnly(phone)
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return "", fmt.Errorf("phone %q is not a 10-digit US number", phone)
	}
	return digits + domain, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
