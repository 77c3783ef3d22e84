// README: Scheduling engine; same-day funnel and the shared gap scanner.
package schedule

import (
	"context"
	"sort"
	"time"

	"dispatch/internal/ai"
	"dispatch/internal/modules/geo"
	"dispatch/internal/modules/profile"
	"dispatch/internal/modules/travel"
	"dispatch/internal/types"
)

// defaultResourceID names the single crew of the MVP.
const defaultResourceID = "crew-1"

// Request carries everything the engine needs for one turn.
type Request struct {
	Profile  *profile.BusinessProfile
	Calendar []CalendarEvent
	Now      time.Time // UTC
	Address  *geo.ResolvedAddress
	Job      *profile.JobEstimate
	Urgency  ai.Urgency
	// IsEmergency and AfterHoursEligible come from the urgency classifier.
	IsEmergency        bool
	AfterHoursEligible bool
}

// Result is a successful slot search. When the chosen slot is an
// after-hours emergency, Alternative carries the next-day option so the
// orchestrator can present the tonight-vs-tomorrow choice. Limitations
// records same-day rejections that forced the next-day funnel.
type Result struct {
	Slot        *Slot
	Funnel      string // "same_day" or "next_day"
	Alternative *Slot
	Limitations []string
}

// Engine computes feasible slots against the supplied calendar.
type Engine struct {
	travel   *travel.Estimator
	resource string
}

func NewEngine(estimator *travel.Estimator) *Engine {
	return &Engine{travel: estimator, resource: defaultResourceID}
}

// FindSlot runs the same-day funnel and falls through to next-day when the
// day is full or closed. A nil Result means no slot anywhere in the horizon;
// the NoFeasibleSlot lists every reason encountered.
func (e *Engine) FindSlot(ctx context.Context, req Request) (*Result, *NoFeasibleSlot) {
	fail := &NoFeasibleSlot{}

	if !profile.KnownTrade(req.Profile.Trade) {
		fail.add(ReasonTradeUnsupported)
		return nil, fail
	}
	if req.Profile.Toggles.OutOfOffice {
		fail.add(ReasonOutOfOffice)
		return nil, fail
	}
	if req.Job == nil {
		fail.add(ReasonJobUnsupported)
		return nil, fail
	}
	if req.Address == nil || !req.Address.Geocoded {
		fail.add(ReasonGeocodeFailed)
		return nil, fail
	}
	if !req.Address.InServiceArea {
		fail.add(ReasonOutOfServiceArea)
		return nil, fail
	}

	loc := req.Profile.Location()
	now := req.Now.In(loc)

	if !req.Profile.InPhoneHours(now) {
		fail.add(ReasonOutsidePhoneHours)
		return nil, fail
	}

	events := sortedEvents(req.Calendar, loc)

	sameDay := e.findSameDay(ctx, req, now, events, fail)
	if sameDay != nil {
		res := &Result{Slot: sameDay, Funnel: "same_day"}
		if sameDay.Kind == SlotAfterHoursEmergency {
			if alt, _ := e.findNextDay(ctx, req, now, events, &NoFeasibleSlot{}); alt != nil {
				res.Alternative = alt
			}
		}
		return res, nil
	}

	limitations := append([]string(nil), fail.Reasons...)
	nextDay, ok := e.findNextDay(ctx, req, now, events, fail)
	if !ok {
		return nil, fail
	}
	return &Result{Slot: nextDay, Funnel: "next_day", Limitations: limitations}, nil
}

// findSameDay scans today's gaps. It returns nil after recording its
// rejection reasons, letting the caller fall to the next-day funnel.
func (e *Engine) findSameDay(ctx context.Context, req Request, now time.Time, events []CalendarEvent, fail *NoFeasibleSlot) *Slot {
	p := req.Profile

	today := events[:0:0]
	for _, ev := range events {
		if sameLocalDay(ev.Start.In(now.Location()), now) {
			today = append(today, ev)
		}
	}

	if p.Capacity.MaxJobsPerDay > 0 && len(today) >= p.Capacity.MaxJobsPerDay {
		fail.add(ReasonCapacityExceeded)
		return nil
	}

	windowEnd, open := p.BusinessClose(now)
	if open && p.Toggles.OvertimeAllowed {
		windowEnd = windowEnd.Add(time.Hour)
	}

	afterHoursEnd := time.Time{}
	if req.AfterHoursEligible || (req.IsEmergency && p.Toggles.AcceptAfterHoursEmergency) {
		if phoneEnd, ok := p.PhoneClose(now); ok {
			if countAfterHours(today, p, now) < p.Capacity.MaxAfterHoursJobsPerDay {
				afterHoursEnd = phoneEnd
			} else {
				fail.add(ReasonAfterHoursQuota)
			}
		}
	}

	if !open && afterHoursEnd.IsZero() {
		fail.add(ReasonOutsideBusinessHours)
		return nil
	}

	scanEnd := windowEnd
	if afterHoursEnd.After(scanEnd) {
		scanEnd = afterHoursEnd
	}

	cursor := now
	if openAt, ok := p.BusinessOpen(now); ok && cursor.Before(openAt) && afterHoursEnd.IsZero() {
		cursor = openAt
	}

	candidates := e.scan(ctx, scanArgs{
		req:       req,
		events:    today,
		cursor:    cursor,
		windowEnd: scanEnd,
		travelAt: func(from, to types.Point, departAt time.Time) int {
			return e.travel.Estimate(ctx, from, to, departAt)
		},
	}, fail)

	for i := range candidates {
		c := &candidates[i]
		endsInBusiness := open && !c.End.After(windowEnd)
		if endsInBusiness {
			continue
		}
		// Past business close: only valid as an after-hours emergency slot
		// ending within phone hours.
		if !afterHoursEnd.IsZero() && !c.End.After(afterHoursEnd) {
			c.Kind = SlotAfterHoursEmergency
			continue
		}
		c.infeasible = true
	}

	return pickBest(candidates, fail, open)
}

type scanArgs struct {
	req       Request
	events    []CalendarEvent
	cursor    time.Time
	windowEnd time.Time
	travelAt  func(from, to types.Point, departAt time.Time) int
}

type candidate struct {
	Slot
	infeasible bool
}

// scan walks the calendar in time order and emits every gap the job fits in,
// honoring buffers and both travel legs. No linked structures: events are
// visited by index only.
func (e *Engine) scan(ctx context.Context, args scanArgs, fail *NoFeasibleSlot) []candidate {
	p := args.req.Profile
	duration := time.Duration(args.req.Job.EstimatedHours * float64(time.Hour))
	buffer := time.Duration(p.Capacity.MinBufferMinutes) * time.Minute
	dest := args.req.Address.Point

	cursor := args.cursor
	prevLoc := p.Anchor.Point()

	// The chronologically latest event already ended before the cursor
	// becomes "previous"; in-progress events push the cursor forward.
	upcoming := make([]CalendarEvent, 0, len(args.events))
	for _, ev := range args.events {
		switch {
		case !ev.End.After(cursor):
			prevLoc = ev.Location.Point()
		case ev.Start.Before(cursor):
			cursor = ev.End
			prevLoc = ev.Location.Point()
		default:
			upcoming = append(upcoming, ev)
		}
	}

	var candidates []candidate
	for i := 0; i <= len(upcoming); i++ {
		gapEnd := args.windowEnd
		if i < len(upcoming) && upcoming[i].Start.Before(gapEnd) {
			gapEnd = upcoming[i].Start
		}

		travelIn := args.travelAt(prevLoc, dest, cursor)
		distIn := geo.MilesBetween(prevLoc, dest)

		if exceedsTravelLimits(p.Travel, travelIn, distIn) {
			fail.add(ReasonTravelLimitsExceeded)
		} else {
			start := cursor.Add(time.Duration(travelIn)*time.Minute + buffer)
			end := start.Add(duration)

			travelOut := 0
			feasible := !end.After(args.windowEnd)
			if feasible && i < len(upcoming) {
				next := upcoming[i]
				travelOut = args.travelAt(dest, next.Location.Point(), end)
				distOut := geo.MilesBetween(dest, next.Location.Point())
				if exceedsTravelLimits(p.Travel, travelOut, distOut) {
					fail.add(ReasonTravelLimitsExceeded)
					feasible = false
				} else if end.Add(time.Duration(travelOut) * time.Minute).After(next.Start) {
					feasible = false
				}
			}
			if feasible && overlapsAny(start, end, args.events) {
				feasible = false
			}

			if feasible {
				kind := SlotRegular
				if start.Hour() == 6 {
					kind = SlotEarlyMorningPriority
				}
				candidates = append(candidates, candidate{Slot: Slot{
					Start:                 start,
					End:                   end,
					ResourceID:            e.resource,
					BookingType:           BookingConfirmed,
					TravelFromPrevMinutes: travelIn,
					TravelToNextMinutes:   travelOut,
					Kind:                  kind,
				}})
			}
		}

		if i < len(upcoming) {
			cursor = upcoming[i].End
			prevLoc = upcoming[i].Location.Point()
		}
	}
	return candidates
}

// pickBest orders candidates by earliest start, breaking ties on the lower
// combined travel, and records the right reason when nothing survived.
func pickBest(candidates []candidate, fail *NoFeasibleSlot, businessOpen bool) *Slot {
	feasible := candidates[:0:0]
	for _, c := range candidates {
		if !c.infeasible {
			feasible = append(feasible, c)
		}
	}
	if len(feasible) == 0 {
		if businessOpen {
			fail.add(ReasonOutsideBusinessHours)
		}
		return nil
	}
	sort.SliceStable(feasible, func(i, j int) bool {
		if !feasible[i].Start.Equal(feasible[j].Start) {
			return feasible[i].Start.Before(feasible[j].Start)
		}
		ti := feasible[i].TravelFromPrevMinutes + feasible[i].TravelToNextMinutes
		tj := feasible[j].TravelFromPrevMinutes + feasible[j].TravelToNextMinutes
		return ti < tj
	})
	best := feasible[0].Slot
	return &best
}

func exceedsTravelLimits(limits profile.TravelLimits, minutes int, miles float64) bool {
	if limits.MaxTravelTimeMinutes > 0 && minutes > limits.MaxTravelTimeMinutes {
		return true
	}
	if limits.MaxTravelDistanceMiles > 0 && miles > limits.MaxTravelDistanceMiles {
		return true
	}
	return false
}

func overlapsAny(start, end time.Time, events []CalendarEvent) bool {
	for _, ev := range events {
		if Overlaps(start, end, ev.Start, ev.End) {
			return true
		}
	}
	return false
}

func countAfterHours(events []CalendarEvent, p *profile.BusinessProfile, day time.Time) int {
	close, ok := p.BusinessClose(day)
	if !ok {
		return len(events)
	}
	n := 0
	for _, ev := range events {
		if !ev.Start.In(day.Location()).Before(close) {
			n++
		}
	}
	return n
}

func sameLocalDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sortedEvents(events []CalendarEvent, loc *time.Location) []CalendarEvent {
	out := make([]CalendarEvent, len(events))
	copy(out, events)
	for i := range out {
		out[i].Start = out[i].Start.In(loc)
		out[i].End = out[i].End.In(loc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}
