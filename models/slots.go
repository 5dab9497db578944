package models

// BookingSlot is a (date, time) pair picked from the schedule.
type BookingSlot struct {
	Date string `json:"date" bson:"date"`
	Time string `json:"time" bson:"time"`
}

// SlotSchedule groups available times by date. Times keep the order the
// scheduling backend returned them in.
type SlotSchedule struct {
	Dates []string            `json:"dates"`
	Times map[string][]string `json:"times"`
}

