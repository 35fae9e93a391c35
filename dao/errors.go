package dao

import "errors"

// ErrNoModel is returned when a Row without a model is converted.
var ErrNoModel = errors.New("no model is set for this row")
