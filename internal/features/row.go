package features

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/mat"
)

// Row is one built feature table: a row per timeslot, a column per feature.
type Row struct {
	frame       dataframe.DataFrame
	density     decimal.Decimal
	categorical map[string]bool
}

func (r *Row) Columns() []string { return r.frame.Names() }

// Len is the number of rows, one per timeslot.
func (r *Row) Len() int { return r.frame.Nrow() }

func (r *Row) Frame() dataframe.DataFrame { return r.frame.Copy() }

// Density is the exact store density placed in the store_density column.
func (r *Row) Density() decimal.Decimal { return r.density }

// Column returns the values of name, or false when the row has no such column.
func (r *Row) Column(name string) ([]float64, bool) {
	for _, n := range r.frame.Names() {
		if n == name {
			return r.frame.Col(name).Float(), true
		}
	}
	return nil, false
}

// Categorical reports whether name is a one-hot indicator column.
func (r *Row) Categorical(name string) bool { return r.categorical[name] }

// Matrix returns the table as a dense rows-by-features matrix.
func (r *Row) Matrix() *mat.Dense {
	rows, cols := r.frame.Dims()
	m := mat.NewDense(rows, cols, nil)
	for j, name := range r.frame.Names() {
		m.SetCol(j, r.frame.Col(name).Float())
	}
	return m
}
