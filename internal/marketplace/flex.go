package marketplace

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexInt decodes upstream quantity fields that are sometimes numbers,
// sometimes numeric strings and sometimes null or garbage. Anything
// unparseable becomes zero: a malformed record must not fail the whole
// payload.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if v, err := strconv.ParseFloat(n.String(), 64); err == nil {
			*f = FlexInt(int(v))
			return nil
		}
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			*f = FlexInt(int(v))
			return nil
		}
	}

	*f = 0
	return nil
}

func (f FlexInt) Int() int {
	return int(f)
}
