package timeutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type Time time.Time

func (t *Time) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == "{}" {
		return nil
	}
	if s[0] == '"' {
		tt, err := time.Parse(`"`+time.RFC3339+`"`, s)
		if err != nil {
			return err
		}
		*t = Time(tt)
	} else {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		*t = Time(time.Unix(i, 0))
	}
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t))
}

func (t Time) Time() time.Time {
	return time.Time(t)
}

// ParseTrace converts a report timestamp of the form "seconds.fraction"
// into nanoseconds. The fraction may carry up to nine digits.
func ParseTrace(s string) (int64, error) {
	sec, frac, _ := strings.Cut(s, ".")
	ns, err := strconv.ParseInt(sec, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "bad timestamp %q", s)
	}
	ns *= int64(time.Second)
	if frac == "" {
		return ns, nil
	}
	if len(frac) > 9 {
		frac = frac[:9]
	}
	fv, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "bad timestamp %q", s)
	}
	for i := len(frac); i < 9; i++ {
		fv *= 10
	}
	return ns + fv, nil
}

// FormatTrace renders nanoseconds the way reports print timestamps, with
// microsecond precision.
func FormatTrace(ns int64) string {
	return fmt.Sprintf("%d.%06d", ns/int64(time.Second), (ns%int64(time.Second))/int64(time.Microsecond))
}
