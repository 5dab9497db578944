package scheduling

import "errors"

// ErrSlotsUnavailable is the single signal callers get for any fetch or
// decode failure. The caller may simply ask again.
var ErrSlotsUnavailable = errors.New("slots unavailable")
