// Package features turns a prediction request into the fixed-schema numeric
// table the persisted regression model was trained on.
//
// A feature table has one row per timeslot, in models.Timeslots order. Scalar
// inputs are broadcast to every row; the timeslot indicator and the timeslot's
// floating population vary per row. Categorical dimensions (quarter, area type,
// commercial area, administrative zone, timeslot) are one-hot encoded over the
// full code universe of a versioned Schema, so the column set never depends on
// which area is selected.
//
// Column names are sanitized with Sanitize before the table is assembled. The
// same function must be applied wherever feature names are produced, otherwise
// the model's feature list and the built table will not line up.
package features
