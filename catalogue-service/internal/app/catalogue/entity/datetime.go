package entity

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateTimeLayout - формат даты публикации без часового пояса
const DateTimeLayout = "2006-01-02T15:04:05"

var dateTimeLayouts = []string{time.RFC3339Nano, DateTimeLayout, "2006-01-02"}

// DateTime - дата публикации книги в запросах и ответах
type DateTime struct {
	time.Time
}

func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t}
}

// ParseDateTime принимает RFC 3339, 2006-01-02T15:04:05 и 2006-01-02
func ParseDateTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected %s", value, DateTimeLayout)
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.UTC().Format(DateTimeLayout))
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = DateTime{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("publishedDate must be a string: %w", err)
	}

	t, err := ParseDateTime(raw)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
