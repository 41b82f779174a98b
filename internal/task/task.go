package task

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Category string

const (
	CategoryPersonal Category = "personal"
	CategoryWork     Category = "work"
	CategoryShopping Category = "shopping"
	CategoryErrand   Category = "errand"
	CategoryOther    Category = "other"
)

// Categories is the fixed set offered by the form, in display order.
var Categories = []Category{
	CategoryPersonal,
	CategoryWork,
	CategoryShopping,
	CategoryErrand,
	CategoryOther,
}

func ParseCategory(v string) (Category, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, c := range Categories {
		if string(c) == v {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, v)
}

const DateLayout = "2006-01-02"

// Date is a calendar day without a time zone. The zero value means "no due
// date" and is stored as an empty string.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(v string) (Date, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return Date{}, nil
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return Date{}, err
	}
	return Date{t: t}, nil
}

func (d Date) IsZero() bool       { return d.t.IsZero() }
func (d Date) Time() time.Time    { return d.t }
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD", full RFC 3339 timestamps and "" or null.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = Date{}
		return nil
	}
	if parsed, err := ParseDate(*s); err == nil {
		*d = parsed
		return nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return fmt.Errorf("due date %q: %w", *s, err)
	}
	*d = NewDate(t.Year(), t.Month(), t.Day())
	return nil
}

type Task struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     Date     `json:"dueDate"`
	Category    Category `json:"category"`
	Completed   bool     `json:"completed"`
}
