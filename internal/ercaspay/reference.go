package ercaspay

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewPaymentReference generates a caller-side transaction reference:
// 32 random hex characters joined to a second-resolution timestamp. The
// random half keeps repeated submissions with identical form data unique;
// retries of the same attempt must reuse the reference to stay idempotent.
func NewPaymentReference() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%s_%s", hex, time.Now().Format("20060102150405"))
}
