// Package schedule contiene las reglas de agenda del taller: días de atención,
// horario y granularidad de media hora. Todo es puro y determinista (no usa time.Now).
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/taller-api/internal/domain"
)

// SlotMinutes es la granularidad de la agenda.
const SlotMinutes = 30

// Rules configura el horario de atención. Open y Close son minutos desde medianoche, ambos inclusive.
type Rules struct {
	Location  *time.Location
	Open      int
	Close     int
	ClosedDay time.Weekday
}

// DefaultRules horario estándar: lunes a sábado de 09:00 a 18:00.
func DefaultRules(loc *time.Location) Rules {
	if loc == nil {
		loc = time.UTC
	}
	return Rules{Location: loc, Open: 9 * 60, Close: 18 * 60, ClosedDay: time.Sunday}
}

// Validate valida fecha y hora de una cita y devuelve el instante canónico.
// Si explicit no es nil, define el instante, pero date y hour se validan igualmente.
func (r Rules) Validate(dateInput, hourInput string, explicit *time.Time) (time.Time, error) {
	loc := r.location()

	minutes, err := ParseHour(hourInput)
	if err != nil {
		return time.Time{}, err
	}
	day, err := ParseDate(dateInput, loc)
	if err != nil {
		return time.Time{}, err
	}
	if err := r.check(day.Weekday(), minutes); err != nil {
		return time.Time{}, err
	}

	instant := at(day, minutes, loc)
	if explicit != nil {
		instant = *explicit
		local := instant.In(loc)
		if err := r.check(local.Weekday(), local.Hour()*60+local.Minute()); err != nil {
			return time.Time{}, err
		}
	}
	return instant, nil
}

func (r Rules) check(wd time.Weekday, minutes int) error {
	if wd == r.ClosedDay {
		return domain.ErrClosedDay
	}
	if minutes < r.Open || minutes > r.Close {
		return domain.ErrOutsideBusinessHours
	}
	return nil
}

func at(day time.Time, minutes int, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, loc)
}

func (r Rules) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

// ParseHour interpreta "HH:MM" (24 h) y devuelve minutos desde medianoche.
// Cualquier valor ilegible o con minutos fuera de {0, 30} es ErrInvalidSlotGranularity.
func ParseHour(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, domain.ErrInvalidSlotGranularity
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, domain.ErrInvalidSlotGranularity
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, domain.ErrInvalidSlotGranularity
	}
	if m%SlotMinutes != 0 {
		return 0, domain.ErrInvalidSlotGranularity
	}
	return h*60 + m, nil
}

// NormalizeHour devuelve la hora en formato canónico "HH:MM" ("9:00" pasa a "09:00").
func NormalizeHour(s string) (string, error) {
	m, err := ParseHour(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60), nil
}

// ParseDate acepta "YYYY-MM-DD" o "DD/MM/YYYY" y devuelve la medianoche de ese día en loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	layout := "2006-01-02"
	if strings.Contains(s, "/") {
		layout = "02/01/2006"
	}
	t, err := time.ParseInLocation(layout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, s)
	}
	return t, nil
}

// NormalizeDate devuelve la fecha en formato ISO (YYYY-MM-DD).
func NormalizeDate(s string) (string, error) {
	t, err := ParseDate(s, time.UTC)
	if err != nil {
		return "", err
	}
	return t.Format("2006-01-02"), nil
}
