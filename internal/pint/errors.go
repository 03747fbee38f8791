package pint

import "errors"

// ErrNotFound maps to an empty-body 404. Unknown providers, regions,
// server kinds, lifecycle states, and missing version rows all surface
// through it.
var ErrNotFound = errors.New("not found")

// ErrBadRequest maps to an empty-body 400.
var ErrBadRequest = errors.New("bad request")
