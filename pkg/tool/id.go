package tool

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// NewID generates a short, non-guessable identifier of the form
// "PFX-1a2b3c4d5e". Prefixed random IDs keep primary keys opaque so order
// volume cannot be enumerated from them.
func NewID(prefix string) string {
	u := uuid.Must(uuid.NewRandom())
	return strings.ToUpper(prefix) + "-" + hex.EncodeToString(u[:])[:10]
}

func NewUserID() string      { return NewID("USR") }
func NewTelcoID() string     { return NewID("TEL") }
func NewBundleID() string    { return NewID("BND") }
func NewOrderID() string     { return NewID("ORD") }
func NewPaymentID() string   { return NewID("PAY") }
func NewReferenceID() string { return NewID("REF") }
func NewAuditID() string     { return NewID("AUD") }
