package service

import (
	"time"

	"shopapp/internal/model"
)

const clockLayout = "15:04:05"

// parseClock accepts "15:04" and "15:04:05".
func parseClock(s string) (time.Time, error) {
	if t, err := time.Parse(clockLayout, s); err == nil {
		return t, nil
	}
	return time.Parse("15:04", s)
}

type slot struct {
	day           int
	open, closeAt time.Time
}

// ValidateOpeningHours checks the opening hours of one shop:
// day in [1,7], openAt strictly before closeAt, and no two slots of the same
// day overlapping on [openAt, closeAt). Touching slots are allowed.
func ValidateOpeningHours(hours []model.OpeningHoursShop) error {
	slots := make([]slot, len(hours))
	for i, h := range hours {
		if h.Day < 1 || h.Day > 7 {
			return validationError("day out of range")
		}
		open, err := parseClock(h.OpenAt)
		if err != nil {
			return validationError("invalid time of day")
		}
		closeAt, err := parseClock(h.CloseAt)
		if err != nil {
			return validationError("invalid time of day")
		}
		if !open.Before(closeAt) {
			return validationError("openAt after closeAt")
		}
		slots[i] = slot{day: h.Day, open: open, closeAt: closeAt}
	}

	for i := range slots {
		for j := i + 1; j < len(slots); j++ {
			a, b := slots[i], slots[j]
			if a.day != b.day {
				continue
			}
			if a.open.Before(b.closeAt) && a.closeAt.After(b.open) {
				return validationError("overlapping hours")
			}
		}
	}
	return nil
}

// normalizeOpeningHours rewrites times of day as "15:04:05". Hours must have
// been validated.
func normalizeOpeningHours(hours []model.OpeningHoursShop) {
	for i := range hours {
		if t, err := parseClock(hours[i].OpenAt); err == nil {
			hours[i].OpenAt = t.Format(clockLayout)
		}
		if t, err := parseClock(hours[i].CloseAt); err == nil {
			hours[i].CloseAt = t.Format(clockLayout)
		}
	}
}
