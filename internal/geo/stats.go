package geo

import (
	"math"
	"sort"
)

// minSpeedSamples is the smallest sample count CalculateMaxSpeed will estimate from
const minSpeedSamples = 20

// SpeedSample is the speed over one interval together with its length
type SpeedSample struct {
	Speed    float64
	Distance float64
}

// CalculateMaxSpeed estimates the max speed while ignoring GPS spikes.
// Samples whose distance is more than 1.5 standard deviations from the mean
// are dropped and the 95th percentile of the remaining speeds is returned.
func CalculateMaxSpeed(samples []SpeedSample) (float64, bool) {
	size := float64(len(samples))
	if len(samples) < minSpeedSamples {
		return 0, false
	}

	var sum float64
	for _, s := range samples {
		sum += s.Distance
	}
	average := sum / size

	var variance float64
	for _, s := range samples {
		variance += (s.Distance - average) * (s.Distance - average)
	}
	deviation := math.Sqrt(variance / size)

	speeds := make([]float64, 0, len(samples))
	for _, s := range samples {
		if math.Abs(s.Distance-average) <= deviation*1.5 {
			speeds = append(speeds, s.Speed)
		}
	}
	if len(speeds) == 0 {
		return 0, false
	}

	sort.Float64s(speeds)

	// Ignore the top 5% as well
	index := int(float64(len(speeds)) * 0.95)
	if index >= len(speeds) {
		index = len(speeds) - 1
	}
	return speeds[index], true
}

// CalculateUphillDownhill sums climbs and descents over a 0.3/0.4/0.3
// smoothed elevation profile. An interior sample with a missing neighbour is
// taken raw, and a missing sample counts as 0.
func CalculateUphillDownhill(elevations []*float64) (uphill, downhill float64) {
	size := len(elevations)
	if size == 0 {
		return 0, 0
	}

	smoothed := make([]float64, size)
	for n, ele := range elevations {
		if ele == nil {
			continue
		}
		smoothed[n] = *ele
		if n > 0 && n < size-1 {
			prev, next := elevations[n-1], elevations[n+1]
			if prev != nil && next != nil {
				smoothed[n] = *prev*0.3 + *ele*0.4 + *next*0.3
			}
		}
	}

	for n := 1; n < size; n++ {
		d := smoothed[n] - smoothed[n-1]
		if d > 0 {
			uphill += d
		} else {
			downhill -= d
		}
	}
	return uphill, downhill
}
