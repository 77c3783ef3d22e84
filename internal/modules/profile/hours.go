package profile

import (
	"fmt"
	"time"
)

var weekdayNames = map[time.Weekday]string{
	time.Sunday:    "sunday",
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
}

// ParseHHMM converts an "HH:MM" string to minutes past midnight.
func ParseHHMM(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("bad HH:MM %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("bad HH:MM %q", s)
	}
	return h*60 + m, nil
}

// Window resolves a weekday's open window from an hours map. ok is false
// when the day is closed or the entry is malformed.
func Window(hours map[string]DayHours, day time.Weekday) (startMin, endMin int, ok bool) {
	h, exists := hours[weekdayNames[day]]
	if !exists {
		return 0, 0, false
	}
	start, err := ParseHHMM(h.Start)
	if err != nil {
		return 0, 0, false
	}
	end, err := ParseHHMM(h.End)
	if err != nil || end <= start {
		return 0, 0, false
	}
	return start, end, true
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// within reports whether local falls inside the day's window in hours.
func within(hours map[string]DayHours, local time.Time) bool {
	start, end, ok := Window(hours, local.Weekday())
	if !ok {
		return false
	}
	m := minuteOfDay(local)
	return m >= start && m < end
}

// InBusinessHours reports whether local is inside business hours.
func (p *BusinessProfile) InBusinessHours(local time.Time) bool {
	return within(p.BusinessHours, local)
}

// InPhoneHours reports whether local is inside phone-answering hours.
func (p *BusinessProfile) InPhoneHours(local time.Time) bool {
	return within(p.PhoneHours, local)
}

// dayAt pins a minutes-past-midnight value onto local's date.
func dayAt(local time.Time, minutes int) time.Time {
	return time.Date(local.Year(), local.Month(), local.Day(), minutes/60, minutes%60, 0, 0, local.Location())
}

// BusinessClose returns the close of business on local's date; ok is false
// on closed days.
func (p *BusinessProfile) BusinessClose(local time.Time) (time.Time, bool) {
	_, end, ok := Window(p.BusinessHours, local.Weekday())
	if !ok {
		return time.Time{}, false
	}
	return dayAt(local, end), true
}

// BusinessOpen returns the opening time on local's date.
func (p *BusinessProfile) BusinessOpen(local time.Time) (time.Time, bool) {
	start, _, ok := Window(p.BusinessHours, local.Weekday())
	if !ok {
		return time.Time{}, false
	}
	return dayAt(local, start), true
}

// PhoneClose returns the end of phone hours on local's date.
func (p *BusinessProfile) PhoneClose(local time.Time) (time.Time, bool) {
	_, end, ok := Window(p.PhoneHours, local.Weekday())
	if !ok {
		return time.Time{}, false
	}
	return dayAt(local, end), true
}
