package speechtotext

import "errors"

// ErrAlreadyRunning is returned by recognizers started while a previous start
// has not ended yet.
var ErrAlreadyRunning = errors.New("recognition already running")
