package validators

import (
	"bytes"
	"strconv"
)

// LenientFloat accepts a JSON number, a numeric string, or null and
// coerces anything unparseable to zero. Partial client input is
// tolerated rather than rejected.
type LenientFloat float64

func (f *LenientFloat) UnmarshalJSON(data []byte) error {
	*f = 0

	data = bytes.Trim(data, `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if v, err := strconv.ParseFloat(string(data), 64); err == nil {
		*f = LenientFloat(v)
	}
	return nil
}

// LenientInt behaves like LenientFloat for integer fields. Fractional
// input is truncated.
type LenientInt int

func (i *LenientInt) UnmarshalJSON(data []byte) error {
	*i = 0

	data = bytes.Trim(data, `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if v, err := strconv.ParseFloat(string(data), 64); err == nil {
		*i = LenientInt(int(v))
	}
	return nil
}
