package chat

import (
	"regexp"
	"strings"

	"github.com/hpungsan/skuloc/internal/location"
)

// messageRegex matches "[M/D/Y, H:MM:SS AM] Sender: Body" anywhere in a line.
// The gap before AM/PM may be a narrow no-break space on newer exports.
var messageRegex = regexp.MustCompile(`\[\d+/\d+/\d+,\s\d+:\d+:\d+[\s\x{202F}\x{00A0}][AP]M\]\s(.+?):\s(.+)`)

// assertionRegex finds the first SKU/location pair in a message body.
// Alternatives are ordered update, multi, single so that "A01 >>> B02"
// is never captured as the single location "A01".
var assertionRegex = regexp.MustCompile(
	`(` + location.SKUPattern + `)\s*(?:,\s*|\s+)(` +
		location.BinPattern + `\s*>>>\s*` + location.BinPattern + `|` +
		location.BinPattern + `\s*&\s*` + location.BinPattern + `|` +
		location.BinPattern + `)`)

const (
	updateSeparator = ">>>"
	multiSeparator  = "&"
)

// Message is a recognised chat message line.
type Message struct {
	Sender string
	Body   string
}

// AssertionKind describes which location shape a message used.
type AssertionKind string

const (
	KindSingle AssertionKind = "single" // "SKU12345, A01"
	KindMulti  AssertionKind = "multi"  // "SKU12345, A01 & A02"
	KindUpdate AssertionKind = "update" // "SKU12345, A01 >>> B02"
)

// Assertion is one SKU/location fact taken from a message body.
type Assertion struct {
	SKU      string
	Location string
	Kind     AssertionKind

	// From is the prior location of an update. It never enters the mapping.
	From string
}

// ParseMessage recognises a message line and splits it into sender and body.
// Continuation lines and system lines without the timestamp prefix return false.
func ParseMessage(line string) (Message, bool) {
	m := messageRegex.FindStringSubmatch(line)
	if m == nil {
		return Message{}, false
	}
	return Message{Sender: m[1], Body: m[2]}, true
}

// ParseAssertion extracts the first SKU/location pair from a message body.
// Only the first pair is used; a second SKU in the same body is ignored.
func ParseAssertion(body string) (Assertion, bool) {
	m := assertionRegex.FindStringSubmatch(body)
	if m == nil {
		return Assertion{}, false
	}

	a := Assertion{
		SKU:      strings.TrimSpace(m[1]),
		Location: strings.TrimSpace(m[2]),
		Kind:     KindSingle,
	}

	switch {
	case strings.Contains(a.Location, updateSeparator):
		from, to, _ := strings.Cut(a.Location, updateSeparator)
		a.Kind = KindUpdate
		a.From = strings.TrimSpace(from)
		a.Location = strings.TrimSpace(to)
	case strings.Contains(a.Location, multiSeparator):
		a.Kind = KindMulti
	}

	return a, true
}
