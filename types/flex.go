package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

var jsonNull = []byte("null")

// FlexString decodes a JSON string or number into its string form. The
// backend serializes numeric primary keys as numbers; the client keys
// everything by string. null decodes to "".
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, jsonNull) {
		*s = ""
		return nil
	}

	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("flex string: expected string or number, got %s", string(b))
	}
	*s = FlexString(n.String())
	return nil
}

func (s FlexString) String() string {
	return string(s)
}

// FlexBool decodes JSON booleans as well as the 0/1 integers some SQL drivers
// emit for boolean columns.
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, jsonNull) {
		*f = false
		return nil
	}

	raw := strings.Trim(string(b), `"`)
	switch raw {
	case "true":
		*f = true
		return nil
	case "false", "":
		*f = false
		return nil
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("flex bool: cannot decode %s", string(b))
	}
	*f = n != 0
	return nil
}

// Bool returns the value of a possibly absent flag.
func (f *FlexBool) Bool() bool {
	return f != nil && bool(*f)
}
