package curriculum

import "errors"

// Sentinel kinds for curriculum errors.
var (
	ErrLoadCurriculum = errors.New("load curriculum failed")
	ErrInvalidSong    = errors.New("invalid song record")
)
