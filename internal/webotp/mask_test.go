package webotp_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shandysiswandi/webotp/internal/webotp"
	"github.com/stretchr/testify/assert"
)

func TestSafeMask(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "six digits", in: "123456", want: "****56"},
		{name: "two digits", in: "12", want: "**"},
		{name: "one digit", in: "7", want: "*"},
		{name: "three chars", in: "abc", want: "*bc"},
		{name: "empty string", in: "", want: ""},
		{name: "nil", in: nil, want: nil},
		{name: "integer", in: 123456, want: 123456},
		{name: "multibyte", in: "кодAB", want: "***AB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, webotp.SafeMask(tt.in))
		})
	}
}

func TestMaskCode_Properties(t *testing.T) {
	codes := []string{"1", "12", "123", "1234", "A1B2C3", "12345678", "x9"}

	for _, code := range codes {
		got := webotp.MaskCode(code)
		n := utf8.RuneCountInString(code)

		assert.Equal(t, n, utf8.RuneCountInString(got), code)
		if n <= 2 {
			assert.Equal(t, strings.Repeat(webotp.MaskChar, n), got, code)
			continue
		}
		assert.Equal(t, strings.Repeat(webotp.MaskChar, n-2), got[:n-2], code)
		assert.Equal(t, code[len(code)-2:], got[n-2:], code)
	}
}
