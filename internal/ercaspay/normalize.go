package ercaspay

import (
	"fmt"
	"strings"
)

// ValidPaymentMethods is the fixed set of rails the gateway accepts.
var ValidPaymentMethods = []string{"card", "bank-transfer", "qrcode", "ussd"}

// currencyCodes maps recognized currency names (lower-cased) to the canonical
// code the gateway expects. The spellings are the gateway's, not ISO 4217.
var currencyCodes = map[string]string{
	"ngn":  "NGN",
	"usd":  "USD",
	"cad":  "CAD",
	"gbp":  "GBP",
	"gh₵":  "GH₵",
	"gmd":  "GMD",
	"ksh":  "Ksh",
	"euro": "EURO",
}

// ResolveCurrency converts a currency name to its canonical code. Unknown
// names are a hard local error, unlike payment methods which silently fall
// back; callers depend on both behaviors.
func ResolveCurrency(name string) (string, error) {
	code, ok := currencyCodes[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCurrency, name)
	}
	return code, nil
}

// NormalizePaymentMethods maps free-form payment-method input to a value the
// gateway accepts. Anything containing both "bank" and "transfer" counts as
// bank-transfer; empty or unrecognized input means no restriction, expressed
// as the full set comma-joined.
func NormalizePaymentMethods(method string) string {
	if method != "" {
		method = strings.ToLower(strings.TrimSpace(method))
		for _, valid := range ValidPaymentMethods {
			if method == valid {
				return method
			}
		}
		if strings.Contains(method, "bank") && strings.Contains(method, "transfer") {
			return "bank-transfer"
		}
	}
	return strings.Join(ValidPaymentMethods, ", ")
}

// statusPaymentMethod normalizes the payment_method sent to the status
// endpoint. Callers pass frontend-supplied free text here, so unsupported
// values fall back to bank-transfer instead of being rejected.
func statusPaymentMethod(method string) string {
	method = strings.ToLower(strings.TrimSpace(method))
	for _, valid := range ValidPaymentMethods {
		if method == valid {
			return method
		}
	}
	return "bank-transfer"
}
