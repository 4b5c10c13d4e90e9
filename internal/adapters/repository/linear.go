package repository

import (
	"context"
	"fmt"
	"slices"

	"github.com/okian/examscore/internal/domain/model"
)

// LinearModel scores rows with a fitted linear regression. It is immutable
// after Load and safe for concurrent use.
type LinearModel struct {
	artifact Artifact
	info     Info
}

// Info describes the loaded artifact.
func (m *LinearModel) Info() Info { return m.info }

// Predict returns one score per row. Rows must carry the artifact's columns
// in the artifact's order.
func (m *LinearModel) Predict(_ context.Context, rows []model.Row) ([]float64, error) {
	out := make([]float64, 0, len(rows))
	for i, row := range rows {
		v, err := m.score(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (m *LinearModel) score(row model.Row) (float64, error) {
	a := &m.artifact
	if len(row) != len(a.Columns) {
		return 0, fmt.Errorf("%w: got %d cells, want %d", ErrRowShape, len(row), len(a.Columns))
	}

	y := a.Intercept
	for i, cell := range row {
		col := a.Columns[i]
		if cell.Column != col {
			return 0, fmt.Errorf("%w: cell %d is %q, want %q", ErrRowShape, i, cell.Column, col)
		}
		enc, categorical := a.Categorical[col]
		if !categorical {
			y += a.Coefficients[col] * cell.Number
			continue
		}
		switch enc.Scheme {
		case EncodingOrdinal:
			lv, ok := enc.Levels[string(cell.Category)]
			if !ok {
				return 0, fmt.Errorf("column %s: unknown level %q", col, cell.Category)
			}
			y += a.Coefficients[col] * lv
		case EncodingOneHot:
			if !slices.Contains(model.Levels, cell.Category) {
				return 0, fmt.Errorf("column %s: unknown level %q", col, cell.Category)
			}
			y += a.Coefficients[col+"_"+string(cell.Category)]
		}
	}
	return y, nil
}

