// README: Next-day funnel: bucketed tentative windows over a 7-day horizon.
package schedule

import (
	"context"
	"time"

	"dispatch/internal/modules/geo"
	"dispatch/internal/modules/travel"
	"dispatch/internal/types"
)

const (
	// horizonDays bounds how far ahead the funnel looks.
	horizonDays = 7
	// arrivalWindowMinutes is the start range offered instead of an exact time.
	arrivalWindowMinutes = 120
	// longJobHours triggers the one-long-job-per-day mix rule.
	longJobHours = 3.0
)

// findNextDay walks up to seven days ahead and returns the first tentative
// slot that fits a morning/afternoon/evening bucket. Travel uses the
// rush-hour model only; live traffic that far out is noise.
func (e *Engine) findNextDay(ctx context.Context, req Request, now time.Time, events []CalendarEvent, fail *NoFeasibleSlot) (*Slot, bool) {
	p := req.Profile

	for d := 1; d <= horizonDays; d++ {
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, d)

		open, okOpen := p.BusinessOpen(day)
		close, okClose := p.BusinessClose(day)
		if !okOpen || !okClose {
			continue
		}

		dayEvents := events[:0:0]
		for _, ev := range events {
			if sameLocalDay(ev.Start, day) {
				dayEvents = append(dayEvents, ev)
			}
		}

		if p.Capacity.MaxJobsPerDay > 0 && len(dayEvents) >= p.Capacity.MaxJobsPerDay {
			fail.add(ReasonCapacityExceeded)
			continue
		}
		if req.Job.EstimatedHours >= longJobHours && hasLongJob(dayEvents) {
			continue
		}

		for _, bucket := range dayBuckets(open, close) {
			candidates := e.scan(ctx, scanArgs{
				req:       req,
				events:    dayEvents,
				cursor:    bucket.start,
				windowEnd: bucket.end,
				travelAt: func(from, to types.Point, departAt time.Time) int {
					return travel.ModelMinutes(geo.MilesBetween(from, to), departAt)
				},
			}, fail)

			if slot := pickBest(candidates, &NoFeasibleSlot{}, true); slot != nil {
				slot.BookingType = BookingTentative
				slot.ArrivalWindowMinutes = arrivalWindowMinutes
				return slot, true
			}
		}
	}

	fail.add(ReasonOutsideBusinessHours)
	return nil, false
}

type bucketWindow struct {
	start, end time.Time
}

// dayBuckets splits a business day into morning/afternoon/evening windows,
// clamped to the open hours.
func dayBuckets(open, close time.Time) []bucketWindow {
	noon := time.Date(open.Year(), open.Month(), open.Day(), 12, 0, 0, 0, open.Location())
	five := time.Date(open.Year(), open.Month(), open.Day(), 17, 0, 0, 0, open.Location())

	edges := []time.Time{open, noon, five, close}
	var buckets []bucketWindow
	for i := 0; i < len(edges)-1; i++ {
		start, end := edges[i], edges[i+1]
		if start.Before(open) {
			start = open
		}
		if end.After(close) {
			end = close
		}
		if start.Before(end) {
			buckets = append(buckets, bucketWindow{start: start, end: end})
		}
	}
	return buckets
}

func hasLongJob(events []CalendarEvent) bool {
	for _, ev := range events {
		if ev.End.Sub(ev.Start) >= time.Duration(longJobHours*float64(time.Hour)) {
			return true
		}
	}
	return false
}
