package core

import (
	"errors"
)

var (
	ErrNilFilterContext        = errors.New("filter context is nil")
	ErrMissingExtrusionSymbol  = errors.New("missing required extrusion symbology")
	ErrResourceLibraryNotFound = errors.New("resource library not found")
	ErrReprojection            = errors.New("reprojection failed")
	ErrUnsupportedTransform    = errors.New("unsupported spatial reference transform")
	ErrInvalidSRS              = errors.New("invalid spatial reference")
	ErrTessellation            = errors.New("tessellation failed")
	ErrExpression              = errors.New("expression evaluation failed")
	ErrUnknown                 = errors.New("unknown")
)
