package model

import (
	"aptitude_backend/internal/util"
	"bytes"
	"encoding/json"
	"strings"
)

type rawKind uint8

const (
	rawAbsent rawKind = iota
	rawString
	rawList
)

// RawOptions is the options field exactly as a client sent it: nothing, one string,
// or a list of strings. The zero value means the field was absent.
type RawOptions struct {
	kind rawKind
	str  string
	list []string
}

func OptionsString(s string) RawOptions {
	return RawOptions{kind: rawString, str: s}
}

func OptionsList(list []string) RawOptions {
	return RawOptions{kind: rawList, list: list}
}

// OptionsFromForm maps form values: repeated keys are a list, a single key is a string.
func OptionsFromForm(values []string) RawOptions {
	switch len(values) {
	case 0:
		return RawOptions{}
	case 1:
		return OptionsString(values[0])
	default:
		return OptionsList(values)
	}
}

// Present reports whether the field carries anything worth writing.
// An empty string counts as absent.
func (r RawOptions) Present() bool {
	switch r.kind {
	case rawString:
		return r.str != ""
	case rawList:
		return true
	}
	return false
}

// IsString reports whether the client sent a single string.
func (r RawOptions) IsString() bool {
	return r.kind == rawString
}

// Normalize turns the raw field into the canonical ordered list. It never fails:
// a list is returned untouched, a string is decoded as a JSON array when it looks
// like one, and otherwise (or when decoding fails) split on commas with each part
// trimmed. Empty parts are kept. Scalars inside a JSON array string become their
// literal text, as they do in a JSON body. ok is false when the field is absent.
func (r RawOptions) Normalize() (options []string, ok bool) {
	if !r.Present() {
		return nil, false
	}
	if r.kind == rawList {
		return r.list, true
	}

	if strings.HasPrefix(r.str, "[") {
		if parsed, err := decodeArray([]byte(r.str)); err == nil {
			return parsed, true
		}
	}

	parts := strings.Split(r.str, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, true
}

func (r *RawOptions) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = RawOptions{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return util.NewValidationError("options", "is not a valid string")
		}
		*r = OptionsString(s)
		return nil
	case '[':
		list, err := decodeArray(data)
		if err != nil {
			return err
		}
		*r = OptionsList(list)
		return nil
	}
	return util.NewValidationError("options", "must be a string or an array of strings")
}

// decodeArray reads a JSON array of scalars into their text form.
func decodeArray(data []byte) ([]string, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, util.NewValidationError("options", "is not a valid array")
	}
	list := make([]string, 0, len(items))
	for _, item := range items {
		text, err := scalarText(item)
		if err != nil {
			return nil, err
		}
		list = append(list, text)
	}
	return list, nil
}

// scalarText keeps numbers and booleans as their literal text, the way the
// document store would cast them into a string array.
func scalarText(item json.RawMessage) (string, error) {
	item = bytes.TrimSpace(item)
	if len(item) == 0 {
		return "", util.NewValidationError("options", "contains an empty element")
	}
	switch item[0] {
	case '"':
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			return "", util.NewValidationError("options", "contains an invalid string")
		}
		return s, nil
	case '{', '[':
		return "", util.NewValidationError("options", "elements must be strings")
	}
	if bytes.Equal(item, []byte("null")) {
		return "", nil
	}
	return string(item), nil
}
