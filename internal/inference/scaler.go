package inference

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

type ScalerMode string

const (
	// ScalerBatch refits mean and variance on every batch it standardizes.
	ScalerBatch ScalerMode = "batch"
	// ScalerPersisted uses the training statistics stored in the artifact.
	ScalerPersisted ScalerMode = "persisted"
)

func (m ScalerMode) Valid() bool {
	return m == ScalerBatch || m == ScalerPersisted
}

// Standardizer rescales the listed columns of m in place.
type Standardizer interface {
	Standardize(m *mat.Dense, columns []int) error
}

// BatchScaler centres each column on the batch mean and divides by the batch
// population standard deviation. Constant columns keep scale 1 and become zero.
type BatchScaler struct{}

func (BatchScaler) Standardize(m *mat.Dense, columns []int) error {
	rows, _ := m.Dims()
	col := make([]float64, rows)
	for _, j := range columns {
		mat.Col(col, j, m)
		mean, std := stat.PopMeanStdDev(col, nil)
		scale := safeScale(std, mean)
		for i, v := range col {
			m.Set(i, j, (v-mean)/scale)
		}
	}
	return nil
}

// PersistedScaler applies fixed per-feature statistics indexed by column.
type PersistedScaler struct {
	Mean  []float64
	Scale []float64
}

func NewPersistedScaler(p *ScalerParams) (*PersistedScaler, error) {
	if p == nil {
		return nil, fmt.Errorf("model artifact carries no scaler statistics")
	}
	return &PersistedScaler{Mean: p.Mean, Scale: p.Scale}, nil
}

func (s *PersistedScaler) Standardize(m *mat.Dense, columns []int) error {
	rows, cols := m.Dims()
	if len(s.Mean) != cols || len(s.Scale) != cols {
		return fmt.Errorf("scaler covers %d features, table has %d", len(s.Mean), cols)
	}
	for _, j := range columns {
		scale := s.Scale[j]
		if scale == 0 {
			scale = 1
		}
		for i := 0; i < rows; i++ {
			m.Set(i, j, (m.At(i, j)-s.Mean[j])/scale)
		}
	}
	return nil
}

// safeScale treats a deviation that is rounding noise relative to the mean as zero.
func safeScale(std, mean float64) float64 {
	if std <= 10*epsilon*math.Max(1, math.Abs(mean)) {
		return 1
	}
	return std
}

const epsilon = 2.220446049250313e-16

func newStandardizer(mode ScalerMode, a *Artifact) (Standardizer, error) {
	switch mode {
	case ScalerBatch, "":
		return BatchScaler{}, nil
	case ScalerPersisted:
		return NewPersistedScaler(a.Scaler)
	default:
		return nil, fmt.Errorf("unknown scaler mode %q", mode)
	}
}
