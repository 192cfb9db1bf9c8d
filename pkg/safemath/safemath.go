package safemath

import (
	"errors"
	"math"
)

var (
	ErrOverflow  = errors.New("arithmetic overflow")
	ErrUnderflow = errors.New("arithmetic underflow")
	ErrDivByZero = errors.New("division by zero")
)

func SaturatingAddU64(a uint64, b uint64) uint64 {
	if a > (math.MaxUint64 - b) {
		return math.MaxUint64
	}
	return a + b
}

func SaturatingSubU64(a uint64, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

func SaturatingMulU64(a uint64, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > (math.MaxUint64 / b) {
		return math.MaxUint64
	}
	return a * b
}

func CheckedAddU64(a uint64, b uint64) (uint64, error) {
	if a > (math.MaxUint64 - b) {
		return 0, ErrOverflow
	}
	return a + b, nil
}

func CheckedSubU64(a uint64, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrUnderflow
	}
	return a - b, nil
}

func CheckedMulU64(a uint64, b uint64) (uint64, error) {
	if a != 0 && b != 0 && a > (math.MaxUint64/b) {
		return 0, ErrOverflow
	}
	return a * b, nil
}

func CheckedDivU64(a uint64, b uint64) (uint64, error) {
	if b == 0 {
		return 0, ErrDivByZero
	}
	return a / b, nil
}
