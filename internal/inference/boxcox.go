package inference

import (
	"fmt"
	"math"

	apperrors "district-dashboard/internal/errors"
)

// BoxCox applies the one-parameter Box-Cox transform to a positive x.
func BoxCox(x, lambda float64) (float64, error) {
	if x <= 0 {
		return 0, apperrors.Transform(fmt.Sprintf("box-cox input %v is not positive", x))
	}
	if lambda == 0 {
		return math.Log(x), nil
	}
	return (math.Pow(x, lambda) - 1) / lambda, nil
}

// InvBoxCox maps a transformed value back to the original scale.
func InvBoxCox(y, lambda float64) (float64, error) {
	var v float64
	if lambda == 0 {
		v = math.Exp(y)
	} else {
		base := lambda*y + 1
		if base < 0 {
			return 0, apperrors.Transform(fmt.Sprintf("inverse box-cox undefined for %v with lambda %v", y, lambda))
		}
		v = math.Pow(base, 1/lambda)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperrors.Transform(fmt.Sprintf("inverse box-cox of %v is not finite", y))
	}
	return v, nil
}
