package scans

import "math/rand/v2"

const (
	minMileage = 10000
	maxMileage = 150000
)

// MileageSource synthesizes the odometer reading handed to the grader.
type MileageSource interface {
	Mileage() int
}

// RandomMileage draws uniformly from [10000, 150000). Safe for concurrent use.
type RandomMileage struct{}

func (RandomMileage) Mileage() int {
	return minMileage + rand.IntN(maxMileage-minMileage)
}

// FixedMileage always reports the same reading.
type FixedMileage int

func (m FixedMileage) Mileage() int { return int(m) }
