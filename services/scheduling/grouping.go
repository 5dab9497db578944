package scheduling

import (
	"strings"

	"bookcheckout/models"
)

const timeLen = len("15:04")

// GroupSlots turns "<date> <time>" strings into a per-date schedule. Times keep
// their arrival order and are cut to HH:MM. Entries without a space or with a
// time shorter than HH:MM are dropped. dates wins when non-empty; otherwise the
// grouped dates are listed in the order they were first seen.
func GroupSlots(raw []string, dates []string) models.SlotSchedule {
	schedule := models.SlotSchedule{Times: make(map[string][]string)}
	var seen []string

	for _, slot := range raw {
		date, clock, ok := strings.Cut(strings.TrimSpace(slot), " ")
		clock = strings.TrimSpace(clock)
		if !ok || date == "" || len(clock) < timeLen {
			continue
		}
		if _, exists := schedule.Times[date]; !exists {
			seen = append(seen, date)
		}
		schedule.Times[date] = append(schedule.Times[date], clock[:timeLen])
	}

	if len(dates) > 0 {
		schedule.Dates = append([]string(nil), dates...)
	} else {
		schedule.Dates = seen
	}
	if schedule.Dates == nil {
		schedule.Dates = []string{}
	}
	return schedule
}
