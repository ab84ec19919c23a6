package ercaspay

import "strings"

// ussdBanks are the banks the gateway issues USSD codes for, keyed by the
// lower-cased name the request-ussd-code endpoint expects.
var ussdBanks = []string{
	"access",
	"ecobank",
	"fcmb",
	"fidelity",
	"firstbank",
	"gtb",
	"heritage",
	"keystone",
	"polaris",
	"stanbic",
	"sterling",
	"uba",
	"union",
	"unity",
	"wema",
	"zenith",
}

// SupportedBanks lists the banks available for USSD payment.
func SupportedBanks() []string {
	banks := make([]string, len(ussdBanks))
	copy(banks, ussdBanks)
	return banks
}

// SupportsBank reports whether a bank name (any case, surrounding space
// ignored) can be used with USSD.
func SupportsBank(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, bank := range ussdBanks {
		if bank == name {
			return true
		}
	}
	return false
}
