package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Holes is the round length of a tee time.
type Holes string

const (
	Holes9  Holes = "9H"
	Holes18 Holes = "18H"
)

// ParseHoles normalizes user input ("18h", " 9H ") into a Holes value.
func ParseHoles(s string) (Holes, error) {
	switch h := Holes(strings.ToUpper(strings.TrimSpace(s))); h {
	case Holes9, Holes18:
		return h, nil
	default:
		return "", fmt.Errorf("invalid holes %q: want 9H or 18H", s)
	}
}

// DateLayout is the wire format of a tee time's date.
const DateLayout = "2006-01-02"

// TeeTime mirrors a row of the `tee_times` table. Date carries only a
// calendar day; Time is a zero-padded "HH:MM" string so that lexical order
// equals chronological order.
type TeeTime struct {
	ID        string    `db:"id"`
	Course    string    `db:"course"`
	Date      time.Time `db:"date"`
	Time      string    `db:"time"`
	Holes     Holes     `db:"holes"`
	Available bool      `db:"available"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type teeTimeJSON struct {
	ID        string `json:"id"`
	Course    string `json:"course"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Holes     Holes  `json:"holes"`
	Available bool   `json:"available"`
}

// MarshalJSON renders the date as YYYY-MM-DD.
func (t TeeTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(teeTimeJSON{
		ID:        t.ID,
		Course:    t.Course,
		Date:      t.Date.Format(DateLayout),
		Time:      t.Time,
		Holes:     t.Holes,
		Available: t.Available,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON; the booking consumer and
// tests decode tee times from the wire.
func (t *TeeTime) UnmarshalJSON(b []byte) error {
	var raw teeTimeJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	d, err := time.Parse(DateLayout, raw.Date)
	if err != nil {
		return fmt.Errorf("tee time date: %w", err)
	}
	*t = TeeTime{ID: raw.ID, Course: raw.Course, Date: d, Time: raw.Time, Holes: raw.Holes, Available: raw.Available}
	return nil
}

// StartsAt combines the slot's date and time in loc.
func (t TeeTime) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" 15:04", t.Date.Format(DateLayout)+" "+t.Time, loc)
}

// ValidClock reports whether s is a zero-padded 24h "HH:MM" time.
func ValidClock(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
