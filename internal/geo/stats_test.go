package geo

import (
	"math"
	"testing"
)

func TestCalculateMaxSpeedTooFewSamples(t *testing.T) {
	samples := make([]SpeedSample, 19)
	for i := range samples {
		samples[i] = SpeedSample{Speed: float64(i), Distance: 10}
	}
	if _, ok := CalculateMaxSpeed(samples); ok {
		t.Errorf("Expected unknown max speed for 19 samples")
	}
}

func TestCalculateMaxSpeedUniform(t *testing.T) {
	samples := make([]SpeedSample, 20)
	for i := range samples {
		samples[i] = SpeedSample{Speed: float64(20 - i), Distance: 10}
	}

	speed, ok := CalculateMaxSpeed(samples)
	if !ok {
		t.Fatalf("Expected a max speed")
	}
	// Sorted speeds are 1..20, index floor(20*0.95) = 19
	if speed != 20 {
		t.Errorf("Expected 20, got %f", speed)
	}
}

func TestCalculateMaxSpeedIgnoresDistanceSpikes(t *testing.T) {
	var samples []SpeedSample
	for i := 0; i < 40; i++ {
		samples = append(samples, SpeedSample{Speed: 5, Distance: 10})
	}
	// GPS jump: long interval with absurd speed
	samples = append(samples, SpeedSample{Speed: 300, Distance: 2000})

	speed, ok := CalculateMaxSpeed(samples)
	if !ok || speed != 5 {
		t.Errorf("Expected spike to be filtered, got %f (ok=%v)", speed, ok)
	}
}

func TestUphillDownhill(t *testing.T) {
	up, down := CalculateUphillDownhill([]*float64{ptr(0), ptr(10), ptr(20), ptr(10)})

	// Smoothed: 0, 10, 14, 10
	if math.Abs(up-14) > 1e-9 {
		t.Errorf("Expected uphill 14, got %f", up)
	}
	if math.Abs(down-4) > 1e-9 {
		t.Errorf("Expected downhill 4, got %f", down)
	}

	if up, down := CalculateUphillDownhill(nil); up != 0 || down != 0 {
		t.Errorf("Expected zero for no elevations")
	}
}

func TestUphillDownhillRawFallback(t *testing.T) {
	// Index 2 has a missing neighbour and is taken raw (30) while index 1 is
	// missing entirely and counts as 0.
	elevations := []*float64{ptr(10), nil, ptr(30), ptr(30)}
	up, down := CalculateUphillDownhill(elevations)

	if math.Abs(down-10) > 1e-9 {
		t.Errorf("Expected downhill 10, got %f", down)
	}
	if math.Abs(up-30) > 1e-9 {
		t.Errorf("Expected uphill 30, got %f", up)
	}
}
