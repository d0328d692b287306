package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexString decodes a JSON string, number, boolean or list of scalars into text.
// Model output does not always keep the types it was asked for.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	*f = FlexString(flexText(data))
	return nil
}

// String returns the text value
func (f FlexString) String() string {
	return string(f)
}

// FlexList decodes a JSON list of scalars, or a single scalar, into a list of strings
type FlexList []string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = nil
		return nil
	}

	if data[0] != '[' {
		if text := flexText(data); text != "" {
			*f = FlexList{text}
		} else {
			*f = nil
		}
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}

	list := make(FlexList, 0, len(items))
	for _, item := range items {
		if text := flexText(item); text != "" {
			list = append(list, text)
		}
	}
	*f = list
	return nil
}

// flexText renders any JSON value as plain text
func flexText(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ""
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			return s
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err == nil {
			parts := make([]string, 0, len(items))
			for _, item := range items {
				if text := flexText(item); text != "" {
					parts = append(parts, text)
				}
			}
			return strings.Join(parts, ", ")
		}
	case '{':
		return string(data)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err == nil {
			if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
				return strconv.FormatInt(i, 10)
			}
			return n.String()
		}
		var b bool
		if err := json.Unmarshal(data, &b); err == nil {
			return strconv.FormatBool(b)
		}
	}
	return string(data)
}
