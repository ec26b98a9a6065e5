package utils

import (
	"math"
	"strconv"
)

// F64ToS converts float to string using the maximum accuracy
func F64ToS(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// MinElemF computes the min value of vs.
// MinElemF panics if len(vs) = 0
func MinElemF(vs []float64) float64 {
	vm := vs[0]
	for _, v := range vs {
		if v < vm {
			vm = v
		}
	}
	return vm
}

// MaxElemF computes the max value of vs.
// MaxElemF panics if len(vs) = 0
func MaxElemF(vs []float64) float64 {
	vm := vs[0]
	for _, v := range vs {
		if v > vm {
			vm = v
		}
	}
	return vm
}

// MinI computes the min value between two integers
func MinI(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// MaxI computes the max value between two integers
func MaxI(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// FloorI returns floor(f) as an integer
func FloorI(f float64) int {
	return int(math.Floor(f))
}

// CeilI returns ceil(f) as an integer
func CeilI(f float64) int {
	return int(math.Ceil(f))
}
