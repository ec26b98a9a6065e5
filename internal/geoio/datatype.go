package geoio

import (
	"strings"
)

// DType is one of the supported pixel data types
type DType int

// Supported DataTypes
const (
	DTypeUNDEFINED DType = iota
	DTypeUINT8
	DTypeUINT16
	DTypeUINT32
	DTypeINT8
	DTypeINT16
	DTypeINT32
	DTypeFLOAT32
	DTypeFLOAT64
)

func (dtype DType) String() string {
	switch dtype {
	case DTypeUINT8:
		return "uint8"
	case DTypeUINT16:
		return "uint16"
	case DTypeUINT32:
		return "uint32"
	case DTypeINT8:
		return "int8"
	case DTypeINT16:
		return "int16"
	case DTypeINT32:
		return "int32"
	case DTypeFLOAT32:
		return "float32"
	case DTypeFLOAT64:
		return "float64"
	default:
		return "undefined"
	}
}

// DTypeFromString converts a string dtype to DType
func DTypeFromString(dtype string) DType {
	switch strings.ToLower(dtype) {
	case "byte", "uint8":
		return DTypeUINT8
	case "uint16":
		return DTypeUINT16
	case "uint32":
		return DTypeUINT32
	case "int8":
		return DTypeINT8
	case "int16":
		return DTypeINT16
	case "int32":
		return DTypeINT32
	case "float32":
		return DTypeFLOAT32
	case "float64":
		return DTypeFLOAT64
	default:
		return DTypeUNDEFINED
	}
}

func (dtype DType) IsFloatingPointFormat() bool {
	switch dtype {
	case DTypeFLOAT32, DTypeFLOAT64:
		return true
	}
	return false
}

// Size returns the size of the dtype in bytes
func (dtype DType) Size() int {
	switch dtype {
	case DTypeUINT8, DTypeINT8:
		return 1
	case DTypeUINT16, DTypeINT16:
		return 2
	case DTypeUINT32, DTypeINT32, DTypeFLOAT32:
		return 4
	case DTypeFLOAT64:
		return 8
	}
	panic("Unknown type")
}
