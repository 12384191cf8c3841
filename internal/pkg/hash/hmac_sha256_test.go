package hash_test

import (
	"testing"

	"github.com/shandysiswandi/webotp/internal/pkg/hash"
	"github.com/stretchr/testify/assert"
)

func TestHMACSHA256(t *testing.T) {
	s := hash.NewHMACSHA256("key")
	body := []byte("The quick brown fox jumps over the lazy dog")

	sig := s.Sign(body)
	assert.Equal(t, "f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8", sig)

	tests := []struct {
		name string
		sig  string
		body []byte
		want bool
	}{
		{name: "Match", sig: sig, body: body, want: true},
		{name: "TamperedBody", sig: sig, body: []byte("the quick brown fox"), want: false},
		{name: "OtherKey", sig: hash.NewHMACSHA256("other").Sign(body), body: body, want: false},
		{name: "NotHex", sig: "zz", body: body, want: false},
		{name: "Empty", sig: "", body: body, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Verify(tt.sig, tt.body))
		})
	}
}
