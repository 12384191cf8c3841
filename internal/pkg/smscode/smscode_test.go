package smscode_test

import (
	"testing"

	"github.com/shandysiswandi/webotp/internal/pkg/smscode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    smscode.Message
		wantErr error
	}{
		{
			name: "body and binding",
			text: "Your code is 123456.\n\n@www.example.com #123456",
			want: smscode.Message{Origin: "www.example.com", Code: "123456", Body: "Your code is 123456."},
		},
		{
			name: "binding only",
			text: "@localhost:8080 #A1B2",
			want: smscode.Message{Origin: "localhost:8080", Code: "A1B2"},
		},
		{
			name: "embedded origin",
			text: "Code 7788\r\n@Top.Example #7788 @iframe.example",
			want: smscode.Message{Origin: "top.example", Code: "7788", Embedded: "iframe.example", Body: "Code 7788"},
		},
		{
			name: "trailing whitespace",
			text: "@example.com #4242\n\n  ",
			want: smscode.Message{Origin: "example.com", Code: "4242"},
		},
		{name: "empty", text: "  \n", wantErr: smscode.ErrEmpty},
		{name: "no binding", text: "Your code is 123456", wantErr: smscode.ErrNoBinding},
		{name: "binding not last", text: "@example.com #123456\nthanks", wantErr: smscode.ErrNoBinding},
		{name: "missing hash", text: "@example.com 123456", wantErr: smscode.ErrNoBinding},
		{name: "bad host", text: "@-example.com #123456", wantErr: smscode.ErrNoBinding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := smscode.Parse(tt.text)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatParse(t *testing.T) {
	msg := smscode.Message{Origin: "example.com", Code: "908172", Embedded: "pay.example", Body: "Your code is 908172."}

	text := smscode.Format(msg)
	assert.Equal(t, "Your code is 908172.\n\n@example.com #908172 @pay.example", text)

	got, err := smscode.Parse(text)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestMessage_Match(t *testing.T) {
	top := smscode.Message{Origin: "example.com", Code: "1"}
	assert.NoError(t, top.Match("EXAMPLE.com"))
	assert.ErrorIs(t, top.Match("evil.com"), smscode.ErrOriginMismatch)

	framed := smscode.Message{Origin: "example.com", Code: "1", Embedded: "pay.example"}
	assert.NoError(t, framed.Match("pay.example"))
	assert.ErrorIs(t, framed.Match("example.com"), smscode.ErrOriginMismatch)
}

func TestValidHost(t *testing.T) {
	assert.True(t, smscode.ValidHost("example.com"))
	assert.True(t, smscode.ValidHost("localhost:8080"))
	assert.False(t, smscode.ValidHost("https://example.com"))
	assert.False(t, smscode.ValidHost("-bad.com"))
	assert.False(t, smscode.ValidHost(""))
}
