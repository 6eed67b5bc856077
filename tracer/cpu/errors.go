package cpu

import "errors"

var (
	ErrNotSetup        = errors.New("cpu tracer: tracer has not been set up")
	ErrNoSceneData     = errors.New("cpu tracer: no scene data")
	ErrNoCameraData    = errors.New("cpu tracer: no camera data")
	ErrBusy            = errors.New("cpu tracer: worker did not accept block request")
	ErrSurfaceMismatch = errors.New("cpu tracer: surface bounds do not match the frame dimensions")
	ErrInvalidBlock    = errors.New("cpu tracer: block exceeds frame bounds")
)
