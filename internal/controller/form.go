package controller

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Amount is a numeric form field as typed by the user. It accepts a JSON
// string or number. A blank field fails required checks; anything else that
// does not parse as a non-negative finite number counts as 0.
type Amount string

// AmountOf formats v for display in a form.
func AmountOf(v float64) Amount {
	return Amount(strconv.FormatFloat(v, 'f', -1, 64))
}

// Float coerces the field to a number.
func (a Amount) Float() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(a)), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
	default:
		*a = Amount(data)
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "is required")
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
