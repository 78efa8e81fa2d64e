package order

import (
	"regexp"
	"strconv"
	"strings"
)

// referenceOverride matches an explicit partner-reference override embedded
// in the order note, e.g. "HPREF: TEST1002". Used for controlled testing
// against the partner's sandbox.
var referenceOverride = regexp.MustCompile(`(?i)HPREF:\s*([A-Za-z0-9_-]+)`)

// Reference derives the partner reference for the order.
//
// Precedence: a note override wins; otherwise the display name with any
// leading '#' stripped, upper-cased; otherwise the numeric order id. The
// result is deterministic for a given order.
func (o *Order) Reference() string {
	if m := referenceOverride.FindStringSubmatch(o.Note); m != nil {
		return m[1]
	}
	if o.Name != "" {
		return strings.ToUpper(strings.TrimPrefix(o.Name, "#"))
	}
	return strconv.FormatInt(o.ID, 10)
}
