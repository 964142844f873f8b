package geo

import (
	"math"
)

// DistanceFromLine returns the distance of point from the line through p1 and
// p2 (Heron's formula). If p1 and p2 coincide, it is the distance to p1.
func DistanceFromLine(point, p1, p2 Location) float64 {
	a := p1.Distance2D(p2)
	if a == 0 {
		return p1.Distance2D(point)
	}

	b := p1.Distance2D(point)
	c := p2.Distance2D(point)
	s := (a + b + c) / 2

	return 2 * math.Sqrt(math.Abs(s*(s-a)*(s-b)*(s-c))) / a
}

// LineEquationCoefficients returns a, b, c of the cartesian line
// a*lat + b*lon + c = 0 through both locations
func LineEquationCoefficients(l1, l2 Location) (float64, float64, float64) {
	if l1.Longitude == l2.Longitude {
		// Vertical line
		return 0, 1, -l1.Longitude
	}
	a := (l1.Latitude - l2.Latitude) / (l1.Longitude - l2.Longitude)
	b := l1.Latitude - l1.Longitude*a
	return 1, -a, -b
}

// SimplifyPolyline applies Ramer-Douglas-Peucker and returns the kept locations
func SimplifyPolyline(points []Location, maxDistance float64) []Location {
	keep := SimplifyIndices(points, maxDistance)
	result := make([]Location, 0, len(keep))
	for _, i := range keep {
		result = append(result, points[i])
	}
	return result
}

// SimplifyIndices returns the ascending indices kept by Ramer-Douglas-Peucker
func SimplifyIndices(points []Location, maxDistance float64) []int {
	n := len(points)
	if n < 3 {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}

	kept := make([]bool, n)
	kept[0], kept[n-1] = true, true

	type span struct{ begin, end int }
	stack := []span{{0, n - 1}}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.end-s.begin < 2 {
			continue
		}

		begin, end := points[s.begin], points[s.end]

		// Cheap line distance only selects the candidate
		a, b, c := LineEquationCoefficients(begin, end)
		candidate := -1
		maxLineDistance := -1000000.0
		for i := s.begin + 1; i < s.end; i++ {
			d := math.Abs(a*points[i].Latitude + b*points[i].Longitude + c)
			if d > maxLineDistance {
				maxLineDistance = d
				candidate = i
			}
		}

		if DistanceFromLine(points[candidate], begin, end) < maxDistance {
			continue
		}

		kept[candidate] = true
		stack = append(stack, span{candidate, s.end}, span{s.begin, candidate})
	}

	indices := make([]int, 0, n)
	for i, k := range kept {
		if k {
			indices = append(indices, i)
		}
	}
	return indices
}
