package smscode

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmpty is returned for a message with no content.
	ErrEmpty = errors.New("smscode: message is empty")
	// ErrNoBinding is returned when the last line is not an origin binding.
	ErrNoBinding = errors.New("smscode: last line is not an origin-bound code")
	// ErrOriginMismatch is returned by Match when the origins differ.
	ErrOriginMismatch = errors.New("smscode: origin does not match")
)

var (
	host     = `[A-Za-z0-9](?:[A-Za-z0-9\-]*[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9\-]*[A-Za-z0-9])?)*(?::[0-9]{1,5})?`
	binding  = regexp.MustCompile(`^@(` + host + `) #([A-Za-z0-9]+)(?: @(` + host + `))?$`)
	hostOnly = regexp.MustCompile(`^` + host + `$`)
)

// ValidHost reports whether s can appear as an origin in a binding line.
func ValidHost(s string) bool {
	return hostOnly.MatchString(s)
}

// Message is a parsed origin-bound SMS.
type Message struct {
	// Origin is the top-level host the code is bound to.
	Origin string
	// Code is the one-time code.
	Code string
	// Embedded is the optional iframe host, empty when absent.
	Embedded string
	// Body is the text above the binding line, trimmed.
	Body string
}

// Parse extracts the origin binding from the last non-empty line of text.
func Parse(text string) (Message, error) {
	text = strings.TrimRight(strings.ReplaceAll(text, "\r\n", "\n"), " \n\t")
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrEmpty
	}

	body, last := "", text
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		body, last = text[:i], text[i+1:]
	}

	m := binding.FindStringSubmatch(strings.TrimSpace(last))
	if m == nil {
		return Message{}, ErrNoBinding
	}

	return Message{
		Origin:   strings.ToLower(m[1]),
		Code:     m[2],
		Embedded: strings.ToLower(m[3]),
		Body:     strings.TrimSpace(body),
	}, nil
}

// Format renders a message in the origin-bound format. An empty body yields
// only the binding line.
func Format(msg Message) string {
	var sb strings.Builder
	if body := strings.TrimSpace(msg.Body); body != "" {
		sb.WriteString(body)
		sb.WriteString("\n\n")
	}

	sb.WriteString("@")
	sb.WriteString(msg.Origin)
	sb.WriteString(" #")
	sb.WriteString(msg.Code)
	if msg.Embedded != "" {
		sb.WriteString(" @")
		sb.WriteString(msg.Embedded)
	}

	return sb.String()
}

// Match reports whether msg may be delivered to a page on host. A message
// with an embedded origin is delivered to the embedded frame.
func (msg Message) Match(host string) error {
	want := msg.Origin
	if msg.Embedded != "" {
		want = msg.Embedded
	}
	if !strings.EqualFold(want, host) {
		return ErrOriginMismatch
	}
	return nil
}
