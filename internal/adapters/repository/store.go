// Package repository loads the serialized regression model the predictor runs on.
package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/okian/examscore/internal/domain/model"
)

// Supported model kinds and categorical encodings.
const (
	KindLinearRegression = "linear_regression"
	EncodingOrdinal      = "ordinal"
	EncodingOneHot       = "onehot"
)

// Artifact is the on-disk model format. It packages the input schema and the
// categorical encoding used at training time alongside the coefficients.
type Artifact struct {
	SchemaVersion string              `json:"schema_version"`
	Kind          string              `json:"model"`
	Columns       []string            `json:"columns"`
	Intercept     float64             `json:"intercept"`
	Coefficients  map[string]float64  `json:"coefficients"`
	Categorical   map[string]Encoding `json:"categorical"`
	TrainedAt     string              `json:"trained_at,omitempty"`
}

// Encoding describes how a categorical column was encoded for training.
//
// ordinal: the level maps to Levels[level], multiplied by Coefficients[column].
// onehot:  the level selects Coefficients[column+"_"+level]; a level without a
// coefficient is the dropped baseline and contributes zero.
type Encoding struct {
	Scheme string             `json:"encoding"`
	Levels map[string]float64 `json:"levels,omitempty"`
}

// Info summarizes a loaded artifact.
type Info struct {
	Path          string   `json:"path"`
	Kind          string   `json:"model"`
	SchemaVersion string   `json:"schema_version"`
	Columns       []string `json:"columns"`
	TrainedAt     string   `json:"trained_at,omitempty"`
	SHA256        string   `json:"sha256"`
}

// Load reads and checks the artifact at path. Missing files wrap
// ErrArtifactMissing; anything unreadable or inconsistent wraps
// ErrArtifactCorrupt or ErrSchemaMismatch.
func Load(_ context.Context, path string, opts ...Option) (*LinearModel, error) {
	o := loadOptions{
		schemaVersion: model.SchemaVersion,
		columns:       model.ColumnNames(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactMissing, path)
		}
		return nil, fmt.Errorf("%w: read %s: %w", ErrArtifactCorrupt, path, err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrArtifactCorrupt, path, err)
	}
	if err := a.check(o); err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	return &LinearModel{
		artifact: a,
		info: Info{
			Path:          path,
			Kind:          a.Kind,
			SchemaVersion: a.SchemaVersion,
			Columns:       slices.Clone(a.Columns),
			TrainedAt:     a.TrainedAt,
			SHA256:        hex.EncodeToString(sum[:]),
		},
	}, nil
}

// check verifies the artifact declares the expected schema and carries every
// coefficient and encoding needed to score a row.
func (a *Artifact) check(o loadOptions) error {
	if a.Kind != KindLinearRegression {
		return fmt.Errorf("%w: unsupported model %q", ErrArtifactCorrupt, a.Kind)
	}
	if a.SchemaVersion != o.schemaVersion {
		return fmt.Errorf("%w: artifact declares %q, service expects %q", ErrSchemaMismatch, a.SchemaVersion, o.schemaVersion)
	}
	if !slices.Equal(a.Columns, o.columns) {
		return fmt.Errorf("%w: artifact columns %v, service expects %v", ErrSchemaMismatch, a.Columns, o.columns)
	}

	for _, col := range a.Columns {
		enc, categorical := a.Categorical[col]
		if !categorical {
			if _, ok := a.Coefficients[col]; !ok {
				return fmt.Errorf("%w: no coefficient for column %s", ErrArtifactCorrupt, col)
			}
			continue
		}
		switch enc.Scheme {
		case EncodingOrdinal:
			if _, ok := a.Coefficients[col]; !ok {
				return fmt.Errorf("%w: no coefficient for ordinal column %s", ErrArtifactCorrupt, col)
			}
			for _, l := range model.Levels {
				if _, ok := enc.Levels[string(l)]; !ok {
					return fmt.Errorf("%w: ordinal column %s has no value for level %s", ErrArtifactCorrupt, col, l)
				}
			}
		case EncodingOneHot:
			// Baseline levels have no coefficient; nothing else to require.
		default:
			return fmt.Errorf("%w: column %s has unknown encoding %q", ErrArtifactCorrupt, col, enc.Scheme)
		}
	}
	return nil
}
