package http

import "errors"

// ErrListingDisabled is returned when a directory is requested and listings are off.
var ErrListingDisabled = errors.New("directory listing disabled")
