package delay

import (
	"fmt"
	"math"
)

const (
	// delays beyond 12 hours either way are treated as data noise and clipped
	clipMin = -720.0
	clipMax = 720.0

	// late-return chart is capped at 5 hours so outliers don't flatten it
	lateDelayChartCapMin = 300.0

	histogramBins = 20

	ScopeAll     = "all"
	ScopeConnect = "connect"
)

func clip(v float64) float64 {
	return math.Max(clipMin, math.Min(clipMax, v))
}

// Summarize computes the dataset card.
func Summarize(store *Store) Summary {
	var s Summary
	for i := range store.rentals {
		r := &store.rentals[i]
		s.TotalRentals++
		switch r.CheckinType {
		case "connect":
			s.ConnectRentals++
		case "mobile":
			s.MobileRentals++
		}
		if r.State == "canceled" {
			s.CanceledRentals++
		}
		if r.MinutesSincePrevious != nil {
			s.WithPreviousRental++
		}
	}
	return s
}

// Analyze computes the late-return and next-driver-impact overview over the
// whole dataset.
func Analyze(store *Store) Overview {
	var o Overview
	var lateDelaySum, waitTimeSum float64
	var withDelayData int
	var lateDelays, waitTimes []float64

	for i := range store.rentals {
		r := &store.rentals[i]
		if r.CheckoutDelayMin != nil {
			d := *r.CheckoutDelayMin
			switch {
			case d < 0:
				o.EarlyReturns++
			case d == 0:
				o.OnTimeReturns++
			default:
				o.LateReturnsTotal++
			}
		}

		if r.MinutesSincePrevious == nil {
			continue
		}
		o.ConsecutiveRentals++

		prevDelay, known := store.PreviousDelay(r)
		if !known {
			continue
		}
		withDelayData++
		clipped := clip(prevDelay)

		if clipped > 0 {
			o.LateReturns++
			lateDelaySum += clipped
			if clipped <= lateDelayChartCapMin {
				lateDelays = append(lateDelays, clipped)
			}
		}

		gap := *r.MinutesSincePrevious
		if clipped > gap {
			o.ProblemCases++
			wait := clipped - gap
			waitTimeSum += wait
			waitTimes = append(waitTimes, wait)
			if r.State == "canceled" {
				o.DelayCancellations++
			}
		}
	}

	o.LateReturnRate = percentage(o.LateReturns, withDelayData)
	o.ProblemRate = percentage(o.ProblemCases, o.ConsecutiveRentals)
	if o.LateReturns > 0 {
		o.AvgLateDelayMin = lateDelaySum / float64(o.LateReturns)
	}
	if o.ProblemCases > 0 {
		o.AvgWaitTimeMin = waitTimeSum / float64(o.ProblemCases)
	}
	o.LateDelayHistogram = histogram(lateDelays, histogramBins)
	o.WaitTimeHistogram = histogram(waitTimes, histogramBins)
	return o
}

// EvaluateThreshold measures the effect of requiring at least threshold
// minutes between consecutive rentals, over all cars or Connect cars only.
// The previous-rental link is resolved against the full dataset regardless
// of scope: the preceding rental may use any checkin type.
func EvaluateThreshold(store *Store, thresholdMin float64, scope string) (ThresholdMetrics, error) {
	if thresholdMin < 0 {
		return ThresholdMetrics{}, fmt.Errorf("threshold must be >= 0, got %g", thresholdMin)
	}
	if scope != ScopeAll && scope != ScopeConnect {
		return ThresholdMetrics{}, fmt.Errorf("scope must be %q or %q, got %q", ScopeAll, ScopeConnect, scope)
	}

	m := ThresholdMetrics{ThresholdMin: thresholdMin, Scope: scope}
	for i := range store.rentals {
		r := &store.rentals[i]
		if scope == ScopeConnect && r.CheckinType != "connect" {
			continue
		}
		m.TotalRentals++

		if r.MinutesSincePrevious == nil {
			continue
		}
		m.RentalsWithPrevious++
		gap := *r.MinutesSincePrevious

		blocked := gap < thresholdMin
		if blocked {
			m.BlockedRentals++
		}

		prevDelay, known := store.PreviousDelay(r)
		if known && clip(prevDelay) > gap {
			m.CurrentProblems++
			if blocked {
				m.ProblemsSolved++
			}
		}
	}

	m.BlockedPercentage = percentage(m.BlockedRentals, m.RentalsWithPrevious)
	m.SolveEfficiency = percentage(m.ProblemsSolved, m.BlockedRentals)
	m.AvailabilityImpact = percentage(m.BlockedRentals, m.TotalRentals)
	return m, nil
}

// SweepThresholds evaluates a threshold range for the slider charts.
func SweepThresholds(store *Store, from, to, step float64, scope string) ([]ThresholdMetrics, error) {
	if step <= 0 {
		return nil, fmt.Errorf("step must be > 0, got %g", step)
	}
	if to < from {
		return nil, fmt.Errorf("sweep range is empty: from %g to %g", from, to)
	}
	var series []ThresholdMetrics
	for threshold := from; threshold <= to; threshold += step {
		m, err := EvaluateThreshold(store, threshold, scope)
		if err != nil {
			return nil, err
		}
		series = append(series, m)
	}
	return series, nil
}

func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func histogram(values []float64, bins int) []HistogramBucket {
	if len(values) == 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return []HistogramBucket{{From: lo, To: hi, Count: len(values)}}
	}
	width := (hi - lo) / float64(bins)
	buckets := make([]HistogramBucket, bins)
	for i := range buckets {
		buckets[i].From = lo + float64(i)*width
		buckets[i].To = lo + float64(i+1)*width
	}
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		buckets[i].Count++
	}
	return buckets
}
