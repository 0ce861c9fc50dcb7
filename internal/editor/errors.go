package editor

import "errors"

// Precondition errors. These are caller-usage refusals; the editor state is
// unchanged when one is returned.
var (
	ErrWrongMode     = errors.New("action not valid in the current mode")
	ErrNoSelection   = errors.New("no row selected")
	ErrOutsideWindow = errors.New("row is outside the editable window")
	ErrLastSplit     = errors.New("cannot delete the last remaining split")
	ErrReadonlyCell  = errors.New("cell is readonly")
	ErrNotConfirmed  = errors.New("delete not confirmed")
	ErrNoSplits      = errors.New("transaction has no live splits")
)
