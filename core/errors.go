package core

import "errors"

// Error kinds reported by the viewer core. Callers match them with errors.Is;
// the wrapping error carries the file, shader log or uniform name.
var (
	ErrIO             = errors.New("io error")
	ErrImport         = errors.New("import error")
	ErrCompile        = errors.New("shader compile error")
	ErrLink           = errors.New("program link error")
	ErrNameResolution = errors.New("name resolution error")
	ErrTextureDecode  = errors.New("texture decode error")
)
