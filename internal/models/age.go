package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Age is a child's age in years. It decodes from a JSON number or from a
// string holding a whole number, which is how browser form fields arrive.
type Age int

// UnmarshalJSON implements json.Unmarshaler
func (a *Age) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*a = Age(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("child_age must be a whole number: %s", data)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("child_age must be a whole number: %q", s)
	}
	*a = Age(n)
	return nil
}
