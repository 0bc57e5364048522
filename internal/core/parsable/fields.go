package parsable

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/gdata/internal/core/domain"
)

// Flags modify the field helpers.
type Flags uint8

const (
	// NoDupes rejects a second occurrence of a single-valued field.
	NoDupes Flags = 1 << iota
	// NonEmpty rejects an empty value with ErrRequiredContentMissing.
	NonEmpty
)

// Unset is the Unix-seconds value of a timestamp that was never set.
const Unset int64 = -1

// ParseTime parses an RFC 3339 timestamp.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// FormatTime renders a timestamp as RFC 3339 in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Unix returns t as Unix seconds, or Unset for the zero time.
func Unix(t time.Time) int64 {
	if t.IsZero() {
		return Unset
	}
	return t.Unix()
}

// FromUnix converts Unix seconds to a time, mapping Unset to the zero time.
func FromUnix(secs int64) time.Time {
	if secs == Unset {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

// check applies flags to value. A field counts as already set when set is
// true or an earlier sibling element had the same name, so an empty first
// occurrence still makes a second one a duplicate.
func check(el *Element, flags Flags, set bool, value string) error {
	if flags&NoDupes != 0 && (set || el.repeated) {
		return &domain.ParseError{Kind: domain.ErrDuplicateElement, Element: el.QName()}
	}
	if flags&NonEmpty != 0 && value == "" {
		return &domain.ParseError{Kind: domain.ErrRequiredContentMissing, Element: el.QName()}
	}
	return nil
}

// Text stores the element's text in dst.
func Text(el *Element, flags Flags, dst *string) error {
	if err := check(el, flags, *dst != "", el.Text); err != nil {
		return err
	}
	*dst = el.Text
	return nil
}

// Time stores the element's RFC 3339 text in dst.
func Time(el *Element, flags Flags, dst *time.Time) error {
	text := strings.TrimSpace(el.Text)
	if err := check(el, flags, !dst.IsZero(), text); err != nil {
		return err
	}
	t, err := ParseTime(text)
	if err != nil {
		return &domain.ParseError{Kind: domain.ErrInvalidFormat, Element: el.QName(), Value: text, Err: err}
	}
	*dst = t
	return nil
}

// Int stores the element's integer text in dst.
func Int(el *Element, flags Flags, dst *int64) error {
	text := strings.TrimSpace(el.Text)
	if err := check(el, flags, false, text); err != nil {
		return err
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return &domain.ParseError{Kind: domain.ErrInvalidFormat, Element: el.QName(), Value: text, Err: err}
	}
	*dst = v
	return nil
}

// AttrBool reads a "true"/"false" attribute into dst, leaving dst untouched
// when the attribute is absent.
func AttrBool(el *Element, space, local string, dst *bool) error {
	v, ok := el.Attr(space, local)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return &domain.ParseError{Kind: domain.ErrInvalidFormat, Element: el.QName(), Property: local, Value: v, Err: err}
	}
	*dst = b
	return nil
}

// AttrInt reads an integer attribute into dst, leaving dst untouched when the
// attribute is absent.
func AttrInt(el *Element, space, local string, dst *int64) error {
	v, ok := el.Attr(space, local)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return &domain.ParseError{Kind: domain.ErrInvalidFormat, Element: el.QName(), Property: local, Value: v, Err: err}
	}
	*dst = n
	return nil
}

// AttrTime reads an RFC 3339 attribute into dst, leaving dst untouched when
// the attribute is absent.
func AttrTime(el *Element, space, local string, dst *time.Time) error {
	v, ok := el.Attr(space, local)
	if !ok {
		return nil
	}
	t, err := ParseTime(v)
	if err != nil {
		return &domain.ParseError{Kind: domain.ErrInvalidFormat, Element: el.QName(), Property: local, Value: v, Err: err}
	}
	*dst = t
	return nil
}

// RequireAttr returns the attribute's value or ErrRequiredFieldMissing.
func RequireAttr(el *Element, space, local string) (string, error) {
	v, ok := el.Attr(space, local)
	if !ok {
		return "", &domain.ParseError{Kind: domain.ErrRequiredFieldMissing, Element: el.QName(), Property: local}
	}
	return v, nil
}

// Require returns ErrRequiredFieldMissing unless present.
func Require(present bool, element, property string) error {
	if present {
		return nil
	}
	return &domain.ParseError{Kind: domain.ErrRequiredFieldMissing, Element: element, Property: property}
}

// JSONString decodes a string member into dst. A JSON null leaves dst empty.
func JSONString(member string, raw json.RawMessage, flags Flags, dst *string) error {
	var v *string
	if err := json.Unmarshal(raw, &v); err != nil {
		return &domain.ParseError{Kind: domain.ErrInvalidFormat, Property: member, Value: string(raw), Err: err}
	}
	if flags&NoDupes != 0 && *dst != "" {
		return &domain.ParseError{Kind: domain.ErrDuplicateElement, Property: member}
	}
	if v == nil || *v == "" {
		if flags&NonEmpty != 0 {
			return &domain.ParseError{Kind: domain.ErrRequiredContentMissing, Property: member}
		}
		*dst = ""
		return nil
	}
	*dst = *v
	return nil
}

// JSONTime decodes an RFC 3339 string member into dst.
func JSONTime(member string, raw json.RawMessage, flags Flags, dst *time.Time) error {
	var s string
	if err := JSONString(member, raw, flags&NonEmpty, &s); err != nil {
		return err
	}
	if flags&NoDupes != 0 && !dst.IsZero() {
		return &domain.ParseError{Kind: domain.ErrDuplicateElement, Property: member}
	}
	if s == "" {
		*dst = time.Time{}
		return nil
	}
	t, err := ParseTime(s)
	if err != nil {
		return &domain.ParseError{Kind: domain.ErrInvalidFormat, Property: member, Value: s, Err: err}
	}
	*dst = t
	return nil
}

// JSONBool decodes a boolean member into dst.
func JSONBool(member string, raw json.RawMessage, dst *bool) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return &domain.ParseError{Kind: domain.ErrInvalidFormat, Property: member, Value: string(raw), Err: err}
	}
	return nil
}

// JSONInt decodes an integer member into dst. Numeric strings are accepted.
func JSONInt(member string, raw json.RawMessage, dst *int64) error {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return &domain.ParseError{Kind: domain.ErrInvalidFormat, Property: member, Value: string(raw), Err: err}
	}
	v, err := n.Int64()
	if err != nil {
		return &domain.ParseError{Kind: domain.ErrInvalidFormat, Property: member, Value: string(raw), Err: err}
	}
	*dst = v
	return nil
}
