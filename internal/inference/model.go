package inference

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Model maps a rows-by-features matrix to one prediction per row.
type Model interface {
	Predict(x mat.Matrix) ([]float64, error)
}

// LinearModel is intercept + x·coefficients.
type LinearModel struct {
	intercept float64
	coef      *mat.VecDense
}

func NewLinearModel(spec ModelSpec) (*LinearModel, error) {
	if spec.Type != ModelTypeLinear {
		return nil, fmt.Errorf("unsupported model type %q", spec.Type)
	}
	if len(spec.Coefficients) == 0 {
		return nil, fmt.Errorf("linear model has no coefficients")
	}
	coef := make([]float64, len(spec.Coefficients))
	copy(coef, spec.Coefficients)
	return &LinearModel{intercept: spec.Intercept, coef: mat.NewVecDense(len(coef), coef)}, nil
}

func (m *LinearModel) Predict(x mat.Matrix) ([]float64, error) {
	rows, cols := x.Dims()
	if cols != m.coef.Len() {
		return nil, fmt.Errorf("model expects %d features, got %d", m.coef.Len(), cols)
	}
	var out mat.VecDense
	out.MulVec(x, m.coef)

	preds := make([]float64, rows)
	for i := range preds {
		preds[i] = out.AtVec(i) + m.intercept
	}
	return preds, nil
}
