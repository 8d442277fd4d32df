// Package extract locates JSON values embedded in free-form model output.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrNotFound  = errors.New("no json value in text")
	ErrMalformed = errors.New("malformed json value")
)

var fenceRe = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// Value returns the first JSON array or object in text. A fenced code block
// takes precedence over bare JSON; a fenced block that does not decode is
// reported as ErrMalformed instead of falling through to bare scanning.
func Value(text string) (json.RawMessage, error) {
	return find(text, 0)
}

// Object decodes the first JSON object in text into v.
func Object(text string, v any) error {
	return decodeInto(text, '{', v)
}

// Array decodes the first JSON array in text into v.
func Array(text string, v any) error {
	return decodeInto(text, '[', v)
}

func decodeInto(text string, open byte, v any) error {
	raw, err := find(text, open)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// find scans for a value starting with open; open == 0 accepts either delimiter.
func find(text string, open byte) (json.RawMessage, error) {
	for _, m := range fenceRe.FindAllStringSubmatch(text, -1) {
		body := strings.TrimSpace(m[1])
		if body == "" || !opens(body[0], open) {
			continue
		}
		if !json.Valid([]byte(body)) {
			return nil, fmt.Errorf("%w: fenced block does not decode", ErrMalformed)
		}
		return json.RawMessage(body), nil
	}

	for i := 0; i < len(text); i++ {
		if !opens(text[i], open) {
			continue
		}
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&raw); err == nil {
			return raw, nil
		}
	}
	return nil, ErrNotFound
}

func opens(c, open byte) bool {
	if open != 0 {
		return c == open
	}
	return c == '[' || c == '{'
}
