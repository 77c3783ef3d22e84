// README: SMS reply composition. Plain text, no hedging, one ask per message.
package conversation

import (
	"fmt"
	"strings"
	"time"

	"dispatch/internal/modules/profile"
	"dispatch/internal/modules/schedule"
)

func msgOffer(in Input, slot *schedule.Slot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "We can be at %s %s", addressText(in), dayText(slot.Start, in.NowLocal))
	if slot.ArrivalWindowMinutes > 0 {
		fmt.Fprintf(&b, ", arriving between %s", arrivalRange(slot))
	} else {
		fmt.Fprintf(&b, " at %s", clockText(slot.Start))
	}
	fmt.Fprintf(&b, ". Estimate: %s. %s to confirm or NO for a different time.", priceText(slot), confirmationCue)
	return b.String()
}

func msgTonightOrTomorrow(in Input, tonight, tomorrow *schedule.Slot) string {
	return fmt.Sprintf(
		"We can send someone tonight, %s, for %s, or %s between %s for %s. %s for tonight, or reply TOMORROW.",
		windowText(tonight), priceText(tonight),
		dayText(tomorrow.Start, in.NowLocal), arrivalRange(tomorrow), priceText(tomorrow),
		confirmationCue)
}

func msgBooked(in Input, slot *schedule.Slot) string {
	if slot == nil {
		return "You're booked. We'll text you when the technician is on the way."
	}
	return fmt.Sprintf("You're booked for %s, %s. We'll text you when the technician is on the way.",
		dayText(slot.Start, in.NowLocal), windowText(slot))
}

func msgAskJobAndAddress(p *profile.BusinessProfile) string {
	return fmt.Sprintf("Sorry we missed your call. What's the problem, and what's the street address? We'll get a %s tech scheduled right away.", tradeNoun(p.Trade))
}

func msgAskJob(p *profile.BusinessProfile) string {
	return fmt.Sprintf("Got it. What exactly is the issue so we can send the right %s tech?", tradeNoun(p.Trade))
}

func msgAskAddress(resolveReason string) string {
	if resolveReason == "geocode_failed" {
		return "We couldn't place that address. Can you send the full street address with ZIP code?"
	}
	return "What's the full street address, including ZIP code?"
}

func msgOutOfServiceArea(in Input) string {
	if in.Resolved != nil && in.Resolved.Geocoded {
		over := in.Resolved.DistanceMiles - in.Profile.ServiceRadiusMiles
		return fmt.Sprintf("Sorry, that address is about %.0f miles outside our %.0f-mile service area (%.0f miles out). A search for a local %s should find someone close by.",
			over, in.Profile.ServiceRadiusMiles, in.Resolved.DistanceMiles, tradeNoun(in.Profile.Trade))
	}
	return fmt.Sprintf("Sorry, that's outside our service area. A search for a local %s should find someone close by.", tradeNoun(in.Profile.Trade))
}

func msgOutsidePhoneHours(p *profile.BusinessProfile, nowLocal time.Time) string {
	base := fmt.Sprintf("Thanks for reaching %s. We're closed right now", p.BusinessName)
	if start, _, ok := profile.Window(p.PhoneHours, nowLocal.AddDate(0, 0, 1).Weekday()); ok {
		base += fmt.Sprintf(" and back tomorrow at %02d:%02d", start/60, start%60)
	}
	base += "."
	if p.EmergencyNumber != "" {
		base += fmt.Sprintf(" If this is an emergency, call %s.", p.EmergencyNumber)
	}
	return base
}

func msgOutOfOffice(p *profile.BusinessProfile) string {
	return fmt.Sprintf("Thanks for reaching %s. We're away at the moment and not booking new work. Please try us again soon.", p.BusinessName)
}

func msgEscalated(p *profile.BusinessProfile) string {
	return fmt.Sprintf("We've flagged this for the owner of %s, who will contact you directly as soon as possible.", p.BusinessName)
}

// windowText renders "5:30-8:00 PM" style ranges, dropping the first
// meridiem when both ends share it.
func windowText(slot *schedule.Slot) string {
	start, end := slot.Start, slot.End
	if start.Format("PM") == end.Format("PM") {
		return start.Format("3:04") + "-" + end.Format("3:04 PM")
	}
	return start.Format("3:04 PM") + "-" + end.Format("3:04 PM")
}

// arrivalRange renders the start range of a tentative slot.
func arrivalRange(slot *schedule.Slot) string {
	latest := slot.Start.Add(time.Duration(slot.ArrivalWindowMinutes) * time.Minute)
	if slot.Start.Format("PM") == latest.Format("PM") {
		return slot.Start.Format("3:04") + "-" + latest.Format("3:04 PM")
	}
	return slot.Start.Format("3:04 PM") + "-" + latest.Format("3:04 PM")
}

func clockText(t time.Time) string {
	return t.Format("3:04 PM")
}

func dayText(t, now time.Time) string {
	switch {
	case sameDate(t, now):
		return "today"
	case sameDate(t, now.AddDate(0, 0, 1)):
		return "tomorrow"
	default:
		return t.Format("Monday, Jan 2")
	}
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func priceText(slot *schedule.Slot) string {
	return fmt.Sprintf("$%d-$%d", slot.PriceMin, slot.PriceMax)
}

func addressText(in Input) string {
	if in.Resolved != nil && in.Resolved.Formatted != "" {
		return in.Resolved.Formatted
	}
	return "your address"
}

func contactLine(p *profile.BusinessProfile) string {
	if p.EmergencyNumber != "" {
		return p.EmergencyNumber
	}
	return "our main line"
}

func tradeNoun(t profile.Trade) string {
	switch t {
	case profile.TradePlumbing:
		return "plumber"
	case profile.TradeElectrical:
		return "electrician"
	case profile.TradeHVAC:
		return "HVAC technician"
	case profile.TradeLocksmith:
		return "locksmith"
	case profile.TradeGarageDoor:
		return "garage-door technician"
	default:
		return "technician"
	}
}

func openTomorrowText(in Input) string {
	if start, _, ok := profile.Window(in.Profile.BusinessHours, in.NowLocal.AddDate(0, 0, 1).Weekday()); ok {
		return fmt.Sprintf("%02d:%02d tomorrow", start/60, start%60)
	}
	return "opening time tomorrow"
}
