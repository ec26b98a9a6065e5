package utils

import (
	"fmt"
	"unsafe"
)

// ToSliceByte converts an unsafe.Pointer to a slice of byte
// Usage:
// f := []float64{1.0, 2.0, 3.0}
// b := ToSliceByte(unsafe.Pointer(&f[0]), len(f)*8)
func ToSliceByte(ptr unsafe.Pointer, l int) []byte {
	return unsafe.Slice((*byte)(ptr), l)
}

// SliceByteToGeneric reinterprets a slice of byte as a slice of T.
// It panics if len(b) is not a multiple of the size of T.
func SliceByteToGeneric[T any](b []byte) []T {
	if len(b) == 0 {
		return nil
	}
	var t T
	d := int(unsafe.Sizeof(t))
	if len(b)%d != 0 {
		panic(fmt.Sprintf("len must be a multiple of %d", d))
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), len(b)/d)
}

// SliceFloat64Equal returns true if the two slices contain the same elements
func SliceFloat64Equal(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] {
			return false
		}
	}
	return true
}
