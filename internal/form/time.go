package form

import "time"

const (
	dateLayout = "2006-01-02"
	// datetime-local inputs submit without seconds or zone.
	dateTimeLayout        = "2006-01-02T15:04"
	dateTimeSecondsLayout = "2006-01-02T15:04:05"
)

func parseDate(raw string) (time.Time, error) {
	return time.Parse(dateLayout, raw)
}

// parseDateTime accepts the datetime-local wire formats and normalizes to
// the minute-precision layout.
func parseDateTime(raw string) (string, error) {
	if t, err := time.Parse(dateTimeLayout, raw); err == nil {
		return t.Format(dateTimeLayout), nil
	}
	t, err := time.Parse(dateTimeSecondsLayout, raw)
	if err != nil {
		return "", err
	}
	return t.Format(dateTimeLayout), nil
}
