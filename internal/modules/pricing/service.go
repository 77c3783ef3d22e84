// README: Pricing service computes time-bucketed estimate bands.
package pricing

import (
	"errors"
	"math"
	"time"

	"dispatch/internal/ai"
	"dispatch/internal/modules/profile"
	"dispatch/internal/types"
)

// ErrNotOffered marks combinations that are never quoted (non-emergency
// night work). Scheduling avoids proposing these; the error is a backstop.
var ErrNotOffered = errors.New("not offered at this time")

// Default emergency bands per bucket, overridable from the profile.
var defaultEmergencyBands = map[Bucket]profile.MultiplierBand{
	BucketWork:    {Low: 1.5, High: 2.0},
	BucketEvening: {Low: 1.5, High: 2.5},
	BucketNight:   {Low: 2.5, High: 3.0},
}

// weekendSurcharge is added to both factors on weekends and holidays.
const weekendSurcharge = 0.5

// BucketFor classifies a local time into a pricing bucket.
func BucketFor(local time.Time) Bucket {
	m := local.Hour()*60 + local.Minute()
	switch {
	case m >= 6*60 && m < 7*60:
		return BucketEarlyMorning
	case m >= 7*60 && m < 18*60:
		return BucketWork
	case m >= 18*60 && m < 19*60+30:
		return BucketEvening
	default:
		return BucketNight
	}
}

// Quote prices a job starting at startLocal. Emergencies are priced with
// the bucket's band; non-emergency evening work is quoted at next-morning
// rates and non-emergency night work is not offered. Output is rounded up
// to whole currency units.
func Quote(job *profile.JobEstimate, startLocal time.Time, urgency ai.Urgency, p *profile.BusinessProfile) (types.PriceRange, error) {
	bucket := BucketFor(startLocal)
	emergency := urgency == ai.UrgencyEmergency

	var band profile.MultiplierBand
	switch {
	case emergency:
		// Early-morning emergencies are priced like work-hour ones.
		key := bucket
		if key == BucketEarlyMorning {
			key = BucketWork
		}
		band = emergencyBand(p, key)
		if job.UrgencyMultiplier > 0 {
			band = profile.MultiplierBand{Low: job.UrgencyMultiplier, High: job.UrgencyMultiplier}
		}
	case bucket == BucketNight:
		return types.PriceRange{}, ErrNotOffered
	case bucket == BucketEarlyMorning:
		f := earlyMorningFactor(startLocal)
		band = profile.MultiplierBand{Low: f, High: f}
	default:
		// Work hours at face value; evenings quoted at next-morning rates.
		band = profile.MultiplierBand{Low: 1.0, High: 1.0}
	}

	if isWeekendOrHoliday(startLocal, p) {
		band.Low += weekendSurcharge
		band.High += weekendSurcharge
	}

	return types.PriceRange{
		Min: int64(math.Ceil(float64(job.CostMin) * band.Low)),
		Max: int64(math.Ceil(float64(job.CostMax) * band.High)),
	}, nil
}

func emergencyBand(p *profile.BusinessProfile, bucket Bucket) profile.MultiplierBand {
	if p.EmergencyMultipliers != nil {
		if band, ok := p.EmergencyMultipliers[string(bucket)]; ok {
			return band
		}
	}
	return defaultEmergencyBands[bucket]
}

// earlyMorningFactor: 06:00 priority starts carry 1.5x, easing to 1.25x at
// 06:30 and face value from 07:00.
func earlyMorningFactor(local time.Time) float64 {
	if local.Hour() == 6 && local.Minute() < 30 {
		return 1.5
	}
	return 1.25
}

func isWeekendOrHoliday(local time.Time, p *profile.BusinessProfile) bool {
	wd := local.Weekday()
	return wd == time.Saturday || wd == time.Sunday || p.IsHoliday(local)
}
