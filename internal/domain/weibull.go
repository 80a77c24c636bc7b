package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrDomain is matched by every DomainError via errors.Is.
var ErrDomain = errors.New("weibull parameter out of domain")

// DomainError reports a non-positive (or NaN) scale or shape factor reaching
// the distribution model.
type DomainError struct {
	Param string
	Value float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s factor must be positive, got %g", e.Param, e.Value)
}

func (e *DomainError) Is(target error) bool {
	return target == ErrDomain
}

// ValidateScale returns a *DomainError unless c > 0.
func ValidateScale(c float64) error {
	if !(c > 0) || math.IsInf(c, 1) {
		return &DomainError{Param: "scale", Value: c}
	}
	return nil
}

// ValidateShape returns a *DomainError unless k > 0.
func ValidateShape(k float64) error {
	if !(k > 0) || math.IsInf(k, 1) {
		return &DomainError{Param: "shape", Value: k}
	}
	return nil
}

func validate(c, k float64) error {
	if err := ValidateScale(c); err != nil {
		return err
	}
	return ValidateShape(k)
}

// Density evaluates the Weibull probability density
//
//	(k/c) * (w/c)^(k-1) * exp(-(w/c)^k)
//
// at wind speed w. At w = 0 the result is the limit of the expression:
// 0 for k > 1, 1/c for k = 1 and +Inf for k < 1. Negative or NaN wind speeds
// lie outside the support and yield 0.
func Density(c, k, w float64) (float64, error) {
	if err := validate(c, k); err != nil {
		return 0, err
	}
	if !(w >= 0) {
		return 0, nil
	}
	if w == 0 {
		switch {
		case k > 1:
			return 0, nil
		case k == 1:
			return 1 / c, nil
		default:
			return math.Inf(1), nil
		}
	}

	// Evaluated in log space: for large k the factors (w/c)^(k-1) and
	// exp(-(w/c)^k) overflow and underflow separately.
	x := w / c
	xk := math.Pow(x, k)
	if math.IsInf(xk, 1) {
		return 0, nil
	}
	return math.Exp(math.Log(k/c) + (k-1)*math.Log(x) - xk), nil
}

// Mean returns the closed-form mean c * Γ(1 + 1/k).
func Mean(c, k float64) (float64, error) {
	if err := validate(c, k); err != nil {
		return 0, err
	}
	return c * math.Gamma(1+1/k), nil
}
