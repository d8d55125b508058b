// Package inference runs the persisted sales model over feature rows and maps
// its output back to currency units.
package inference

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	apperrors "district-dashboard/internal/errors"
	"district-dashboard/internal/features"
	"district-dashboard/internal/models"
	"district-dashboard/internal/observability"
)

// Dataset is what the predictor needs from the loaded data: the latest record
// per area, and every record when the artifact carries no schema.
type Dataset interface {
	features.AreaLookup
	QuarterRecords() []models.QuarterRecord
}

type Predictor struct {
	artifact *Artifact
	builder  *features.Builder
	model    Model
	scaler   Standardizer
	numeric  []int
	logger   *slog.Logger
	now      func() time.Time
}

func NewPredictor(a *Artifact, data Dataset, mode ScalerMode, logger *slog.Logger) (*Predictor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	schema := features.SchemaFromRecords(data.QuarterRecords())
	if a.Schema != nil {
		schema = *a.Schema
	}
	builder, err := features.NewBuilder(schema, data)
	if err != nil {
		return nil, fmt.Errorf("feature schema: %w", err)
	}
	if err := checkColumns(a.FeatureNames, builder.Columns()); err != nil {
		return nil, err
	}

	model, err := NewLinearModel(a.Model)
	if err != nil {
		return nil, err
	}
	scaler, err := newStandardizer(mode, a)
	if err != nil {
		return nil, err
	}

	var numeric []int
	for j, name := range a.FeatureNames {
		if !builder.Categorical(name) {
			numeric = append(numeric, j)
		}
	}

	logger.Info("prediction model ready",
		"version", a.Version,
		"features", len(a.FeatureNames),
		"schema", schema.Version,
		"scaler", string(mode),
	)

	return &Predictor{
		artifact: a,
		builder:  builder,
		model:    model,
		scaler:   scaler,
		numeric:  numeric,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func checkColumns(want, got []string) error {
	if slices.Equal(want, got) {
		return nil
	}
	if len(want) != len(got) {
		return apperrors.SchemaMismatch(fmt.Sprintf("model expects %d features, row has %d", len(want), len(got)))
	}
	for i := range want {
		if want[i] != got[i] {
			return apperrors.SchemaMismatch(fmt.Sprintf("feature %d: model expects %q, row has %q", i, want[i], got[i]))
		}
	}
	return nil
}

func (p *Predictor) Version() string { return p.artifact.Version }

func (p *Predictor) Lambda() float64 { return p.artifact.Lambda }

// Builder exposes the feature builder so callers can validate input up front.
func (p *Predictor) Builder() *features.Builder { return p.builder }

// Predict estimates per-timeslot sales for sel. It either returns all six
// slots and their total or an error; there are no partial results.
func (p *Predictor) Predict(ctx context.Context, sel models.Selection, in models.UserInput) (*models.Estimate, error) {
	ctx, span := observability.StartSpan(ctx, "inference.predict")
	defer func() {
		span.Finish()
		observability.LogSpan(ctx, p.logger, span)
	}()
	span.SetTag("area_code", sel.AreaCode)
	span.SetTag("period", sel.Period().String())

	est, err := p.predict(ctx, sel, in)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.SetTag("total", strconv.FormatFloat(est.Total, 'f', 0, 64))
	return est, nil
}

func (p *Predictor) predict(ctx context.Context, sel models.Selection, in models.UserInput) (*models.Estimate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	row, err := p.builder.Build(sel, in)
	if err != nil {
		return nil, err
	}
	if err := checkColumns(p.artifact.FeatureNames, row.Columns()); err != nil {
		return nil, err
	}

	x := row.Matrix()
	if err := p.scaler.Standardize(x, p.numeric); err != nil {
		return nil, apperrors.InternalWrap(err, "standardize features")
	}

	raw, err := p.model.Predict(x)
	if err != nil {
		return nil, apperrors.InternalWrap(err, "evaluate model")
	}
	if len(raw) != len(models.Timeslots) {
		return nil, apperrors.Internal(fmt.Sprintf("model returned %d predictions, want %d", len(raw), len(models.Timeslots)))
	}

	est := &models.Estimate{
		Selection:    sel,
		Slots:        make([]models.SlotEstimate, len(raw)),
		ModelVersion: p.artifact.Version,
		GeneratedAt:  p.now().UTC(),
	}
	for i, y := range raw {
		sales, err := InvBoxCox(y, p.artifact.Lambda)
		if err != nil {
			return nil, fmt.Errorf("timeslot %s: %w", models.Timeslots[i], err)
		}
		est.Slots[i] = models.SlotEstimate{Timeslot: models.Timeslots[i], Raw: y, Sales: sales}
		est.Total += sales
	}
	return est, nil
}
