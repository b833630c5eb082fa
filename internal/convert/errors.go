package convert

import (
	"errors"

	"github.com/OpenTraceLab/kicad2fec/pkg/geometry"
)

// ErrConfiguration reports a problem with the requested conversion:
// unknown pad or drill shapes, conflicting conductor assignments,
// unknown layers, or use of an uninitialized layout.
var ErrConfiguration = errors.New("configuration error")

// ErrInputFormat reports an unreadable or malformed board file.
var ErrInputFormat = errors.New("input format error")

// ErrGeometryDegenerate reports geometry too small or malformed to
// process. It is the geometry package's sentinel, re-exported so
// callers can classify pipeline failures without importing geometry.
var ErrGeometryDegenerate = geometry.ErrDegenerate
