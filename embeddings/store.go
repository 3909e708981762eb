// Package embeddings holds the immutable embedding table addressed by player label.
package embeddings

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEmptyStore indicates a table with no rows or zero dimensions.
	ErrEmptyStore = errors.New("embedding table is empty")

	// ErrRaggedRows indicates rows of differing length.
	ErrRaggedRows = errors.New("embedding rows have differing lengths")

	// ErrNonFinite indicates a NaN or infinite value.
	ErrNonFinite = errors.New("embedding value is not finite")
)

// Store is a dense row-major matrix, one row per label. It is never
// mutated after construction and is safe for concurrent readers.
type Store struct {
	data []float64
	rows int
	dim  int
}

// NewStore copies rows into a new Store.
func NewStore(rows [][]float64) (*Store, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyStore
	}

	dim := len(rows[0])
	data := make([]float64, 0, len(rows)*dim)
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", ErrRaggedRows, i, len(row), dim)
		}
		data = append(data, row...)
	}
	if err := checkFinite(data, dim); err != nil {
		return nil, err
	}

	return &Store{data: data, rows: len(rows), dim: dim}, nil
}

// NewStoreFromFlat wraps a row-major buffer of rows*dim values.
// The Store takes ownership of data.
func NewStoreFromFlat(data []float64, rows, dim int) (*Store, error) {
	if rows <= 0 || dim <= 0 {
		return nil, ErrEmptyStore
	}
	if rows > math.MaxInt/dim || len(data) != rows*dim {
		return nil, fmt.Errorf("%w: have %d values for %dx%d", ErrRaggedRows, len(data), rows, dim)
	}
	if err := checkFinite(data, dim); err != nil {
		return nil, err
	}
	return &Store{data: data, rows: rows, dim: dim}, nil
}

func checkFinite(data []float64, dim int) error {
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: row %d column %d is %v", ErrNonFinite, i/dim, i%dim, v)
		}
	}
	return nil
}

// Rows returns the number of rows.
func (s *Store) Rows() int { return s.rows }

// Dim returns the vector length.
func (s *Store) Dim() int { return s.dim }

// Has reports whether label addresses a row.
func (s *Store) Has(label int) bool {
	return label >= 0 && label < s.rows
}

// Row returns the vector for label. The returned slice aliases the table
// and must not be modified.
func (s *Store) Row(label int) ([]float64, bool) {
	if !s.Has(label) {
		return nil, false
	}
	start := label * s.dim
	return s.data[start : start+s.dim : start+s.dim], true
}
