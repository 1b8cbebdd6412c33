package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
)

// badRequest is a client error whose message is returned verbatim.
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

func badRequestf(format string, args ...any) error {
	return &badRequest{msg: fmt.Sprintf(format, args...)}
}

var errNotObject = &badRequest{msg: "Body must be a JSON object"}

// readBody reads the whole request body.
func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, badRequestf("Body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

// readObject decodes the request body as a JSON object. An empty body is an
// empty object.
func readObject(r *http.Request) (map[string]any, error) {
	data, err := readBody(r)
	if err != nil {
		return nil, err
	}
	return parseObject(data)
}

func parseObject(data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}
	var body any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, badRequestf("Invalid JSON body")
	}
	obj, ok := body.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

// requireString returns a non-blank string field.
func requireString(body map[string]any, key string) (string, error) {
	v, ok := body[key]
	if !ok || v == nil {
		return "", badRequestf("%s is required", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", badRequestf("%s must be a string", key)
	}
	if strings.TrimSpace(s) == "" {
		return "", badRequestf("%s is required", key)
	}
	return s, nil
}

// optionalString returns "" for an absent or null field.
func optionalString(body map[string]any, key string) (string, error) {
	v, ok := body[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", badRequestf("%s must be a string", key)
	}
	return s, nil
}

// optionalBool returns false for an absent or null field.
func optionalBool(body map[string]any, key string) (bool, error) {
	v, ok := body[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, badRequestf("%s must be a boolean", key)
	}
	return b, nil
}

// optionalSize returns a non-negative integer field, 0 when absent.
func optionalSize(body map[string]any, key string) (int64, error) {
	v, ok := body[key]
	if !ok || v == nil {
		return 0, nil
	}
	f, ok := v.(float64)
	if !ok || f < 0 || f != math.Trunc(f) || f > math.MaxInt64 {
		return 0, badRequestf("%s must be a non-negative integer", key)
	}
	return int64(f), nil
}

// stringList accepts a string or an array of strings. Absent or null yields
// nil; required fields must then be checked by the caller. Blank strings are
// rejected.
func stringList(body map[string]any, key string) ([]string, error) {
	v, ok := body[key]
	if !ok || v == nil {
		return nil, nil
	}
	var out []string
	switch t := v.(type) {
	case string:
		out = []string{t}
	case []any:
		out = make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, badRequestf("%s must be a string or an array of strings", key)
			}
			out = append(out, s)
		}
	default:
		return nil, badRequestf("%s must be a string or an array of strings", key)
	}
	for _, s := range out {
		if strings.TrimSpace(s) == "" {
			return nil, badRequestf("%s must not contain blank entries", key)
		}
	}
	return out, nil
}

// objectOrWrap keeps objects and wraps any other non-null value as
// {"value": v}.
func objectOrWrap(v any) map[string]any {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		return t
	default:
		return map[string]any{"value": t}
	}
}
