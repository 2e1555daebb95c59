package users

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CreateUserRequest is the body of POST /user.
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Age   Age    `json:"age" validate:"required"`
	Email string `json:"email" validate:"required"`
}

// UpdateUserRequest is the body of PATCH /user/{id}. A nil field was not sent.
type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty"`
	Age   *Age    `json:"age,omitempty"`
	Email *string `json:"email,omitempty"`
}

// Age is an age as sent by a client, either a JSON number or a numeric string.
// A non-empty string or a non-zero number counts as given, so "0" is an age
// of zero while 0 is treated like a missing age.
type Age struct {
	value  int
	set    bool
	valid  bool
	truthy bool
}

// NewAge returns a present, valid Age.
func NewAge(v int) Age {
	return Age{value: v, set: true, valid: true, truthy: v != 0}
}

// UnmarshalJSON coerces numbers by truncation and strings by their leading
// integer ("31 years" is 31). Anything else is recorded as invalid.
func (a *Age) UnmarshalJSON(data []byte) error {
	*a = Age{}
	if string(data) == "null" {
		return nil
	}
	a.set = true
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		a.truthy = s != ""
		a.value, a.valid = leadingInt(s)
		return nil
	}
	switch string(data) {
	case "true":
		a.truthy = true
		return nil
	case "false":
		return nil
	}
	if len(data) > 0 && (data[0] == '{' || data[0] == '[') {
		a.truthy = true
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil
	}
	a.truthy = f != 0
	if math.Abs(f) > 1<<53 {
		return nil
	}
	a.value, a.valid = int(math.Trunc(f)), true
	return nil
}

// MarshalJSON writes the coerced value, or null when absent or invalid.
func (a Age) MarshalJSON() ([]byte, error) {
	if v, ok := a.Int(); ok {
		return []byte(strconv.Itoa(v)), nil
	}
	return []byte("null"), nil
}

// Present reports whether the field was sent with a non-null value.
func (a *Age) Present() bool {
	return a != nil && a.set
}

// Given reports whether the field counts as supplied: a non-empty string, a
// non-zero number, or any other non-null value.
func (a *Age) Given() bool {
	return a != nil && a.set && a.truthy
}

// Int returns the coerced value when present and valid.
func (a *Age) Int() (int, bool) {
	if a == nil || !a.set || !a.valid {
		return 0, false
	}
	return a.value, true
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return v, true
}
