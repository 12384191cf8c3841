package webotp

import "strings"

// MaskChar replaces the hidden part of a code.
const MaskChar = "*"

// SafeMask redacts a code for logging.
//
// Anything that is not a non-empty string is returned unchanged. Codes of at
// most two characters are fully masked; longer codes keep their last two
// characters.
func SafeMask(code any) any {
	s, ok := code.(string)
	if !ok || s == "" {
		return code
	}

	return MaskCode(s)
}

// MaskCode is SafeMask for strings. Length is counted in runes.
func MaskCode(code string) string {
	runes := []rune(code)
	n := len(runes)
	if n <= 2 {
		return strings.Repeat(MaskChar, n)
	}

	return strings.Repeat(MaskChar, n-2) + string(runes[n-2:])
}
