package readings

import (
	"bytes"
	"encoding/json"
	"strings"
)

// looseString accepts a JSON string, number or bool and keeps its text, so
// clients may send "2023" or 2023, "1" or true.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		if t {
			*s = "1"
		} else {
			*s = "0"
		}
	default:
		*s = looseString(strings.TrimSpace(string(b)))
	}
	return nil
}

type addReq struct {
	Title        looseString  `json:"title"`
	Author       looseString  `json:"author"`
	ReadYear     looseString  `json:"read_year"`
	ReadMonth    looseString  `json:"read_month"`
	UnsureOfDate *looseString `json:"unsure_of_date"`
	Format       looseString  `json:"format"`
	Context      looseString  `json:"context"`
}
