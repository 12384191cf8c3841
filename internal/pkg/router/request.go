package router

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/webotp/internal/pkg/goerror"
)

const maxBodyBytes = 64 * 1024

// Request wraps http.Request with helpers for inbound handlers.
type Request struct {
	*http.Request
}

// GetParam reads a path parameter stored by httprouter.
func (r *Request) GetParam(key string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(key)
}

// GetQuery returns the trimmed query value for key.
func (r *Request) GetQuery(key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// DecodeBody decodes a single JSON object into dst. Unknown fields, trailing
// data and bodies over 64KB are rejected.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Body == nil || r.Body == http.NoBody {
		return goerror.NewInvalidFormat()
	}
	return decode(r.Body, dst)
}

// DecodeOptionalBody is DecodeBody except that an empty body leaves dst
// untouched.
func (r *Request) DecodeOptionalBody(dst any) error {
	if r == nil || r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil || len(raw) > maxBodyBytes {
		return goerror.NewInvalidFormat()
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return decode(bytes.NewReader(raw), dst)
}

func decode(body io.Reader, dst any) error {
	dec := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return goerror.NewInvalidFormat()
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return goerror.NewInvalidFormat()
	}
	return nil
}
