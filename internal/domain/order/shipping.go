package order

import "strings"

// Partner shipping method codes.
const (
	ShipCodeUSPSPriority = "P002"
	ShipCodeFedExGround  = "F006"
	ShipCodePickup       = "PICKUP"

	// FallbackShipCode is used when neither the title table nor the
	// configured default resolves a code. The mapping must stay total: the
	// partner rejects envelopes with an empty shipby field.
	FallbackShipCode = ShipCodeUSPSPriority
)

// shipCodeByTitle maps normalized shipping-method titles to partner codes.
var shipCodeByTitle = map[string]string{
	"usps priority": ShipCodeUSPSPriority,
	"priority mail": ShipCodeUSPSPriority,
	"fedex ground":  ShipCodeFedExGround,
	"ground":        ShipCodeFedExGround,
	"pickup":        ShipCodePickup,
	"local pickup":  ShipCodePickup,
}

// ShippingCode resolves a shipping-method title to a partner code.
// Lookup is case- and surrounding-whitespace-insensitive. Unknown titles
// fall back to defaultCode, then to FallbackShipCode.
func ShippingCode(title, defaultCode string) string {
	normalized := strings.ToLower(strings.TrimSpace(title))
	if code, ok := shipCodeByTitle[normalized]; ok {
		return code
	}
	if defaultCode != "" {
		return defaultCode
	}
	return FallbackShipCode
}
