package state

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hearthwood/annalist/save"
)

// Date is a game calendar date in Y.M.D form, e.g. 1066.9.15.
type Date struct {
	Year  int
	Month int
	Day   int
}

// ParseDate parses a Y.M.D string. Month and day may be omitted and
// default to 1.
func ParseDate(s string) (Date, error) {
	parts := strings.Split(s, ".")
	if len(parts) == 0 || len(parts) > 3 || parts[0] == "" {
		return Date{}, fmt.Errorf("state: bad date %q", s)
	}
	d := Date{Month: 1, Day: 1}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, fmt.Errorf("state: bad date %q", s)
		}
		switch i {
		case 0:
			d.Year = n
		case 1:
			d.Month = n
		case 2:
			d.Day = n
		}
	}
	return d, nil
}

// dateField reads an optional date field from a raw tree. A missing key
// yields the zero date.
func dateField(o *save.Object, key string) (Date, error) {
	v := o.Get(key)
	if v == nil {
		return Date{}, nil
	}
	s, err := v.AsString()
	if err != nil {
		return Date{}, err
	}
	return ParseDate(s)
}

// String renders the date back to Y.M.D form.
func (d Date) String() string {
	return fmt.Sprintf("%d.%d.%d", d.Year, d.Month, d.Day)
}

// IsZero reports whether the date was never set.
func (d Date) IsZero() bool { return d == Date{} }

// Compare orders two dates chronologically.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(d.Month, o.Month)
	default:
		return cmpInt(d.Day, o.Day)
	}
}

// Before reports whether d falls strictly before o.
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// MarshalJSON renders the date as its Y.M.D string.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(d.String())), nil
}
