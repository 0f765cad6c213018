package mmif

import (
	"fmt"
	"strings"

	"clamsutils/internal/services"
)

// ToSeconds converts a time point in unit to seconds. Frame-based units need
// a frame rate, which MMIF views do not carry reliably, so they are rejected.
func ToSeconds(value float64, unit string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "milliseconds", "millisecond", "ms", "msec":
		return value / 1000, nil
	case "seconds", "second", "s", "sec":
		return value, nil
	case "frames", "frame", "f":
		return 0, services.Wrap(services.ErrNotSupported, "mmif", "time unit", "frame-based time points need an fps", nil)
	case "":
		return 0, services.Wrap(services.ErrMissingData, "mmif", "time unit", "timeUnit is not set", nil)
	default:
		return 0, services.Wrap(services.ErrMalformedInput, "mmif", "time unit", fmt.Sprintf("unknown timeUnit %q", unit), nil)
	}
}

// Interval returns the start and end of a TimeFrame in seconds, reading
// timeUnit from the annotation or its view metadata.
func Interval(tf *Annotation) (float64, float64, error) {
	start, okStart := tf.Number("start")
	end, okEnd := tf.Number("end")
	if !okStart || !okEnd {
		return 0, 0, services.Wrap(services.ErrMissingData, "mmif", "time frame", fmt.Sprintf("%s has no start/end", tf.LongID()), nil)
	}
	unit := tf.String("timeUnit")
	s, err := ToSeconds(start, unit)
	if err != nil {
		return 0, 0, err
	}
	e, err := ToSeconds(end, unit)
	if err != nil {
		return 0, 0, err
	}
	return s, e, nil
}
