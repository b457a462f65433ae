package statica

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
)

var rangePattern = regexp.MustCompile(`bytes=(\d*)-(\d*)`)

// RangeResult is the serving window chosen for a request.
// Partial is true when the window came from a Range header.
type RangeResult struct {
	Window  Window
	Partial bool
}

// ParseRange parses the first "bytes=<start>-<end>" specifier of a Range header.
// Both sides are optional decimal integers.
func ParseRange(header string) (RangeRequest, error) {
	m := rangePattern.FindStringSubmatch(header)
	if m == nil {
		return RangeRequest{}, fmt.Errorf("parse range %q: %w", header, ErrMalformedRange)
	}

	var req RangeRequest
	for i, dst := range []*Offset{&req.Start, &req.End} {
		raw := m[i+1]
		if raw == "" {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return RangeRequest{}, fmt.Errorf("parse range %q: %w", header, ErrMalformedRange)
		}
		*dst = Some(n)
	}

	return req, nil
}

// ResolveRange resolves a Range header against a resource of the given size
// and sets the headers describing the window on w.
//
// A missing or malformed header selects the whole resource. A window that
// cannot be served returns ErrUnsatisfiableRange and leaves w untouched.
func ResolveRange(w http.Header, header string, size int64, mode ProtocolMode) (RangeResult, error) {
	full := RangeResult{Window: FullWindow(size)}

	if mode == ModeStrict {
		w.Set("Accept-Ranges", "bytes")
	}

	if header == "" || size == 0 {
		return full, nil
	}

	req, err := ParseRange(header)
	if err != nil {
		return full, nil
	}

	switch mode {
	case ModeStrict:
		return resolveStrict(w, req, size)
	default:
		return resolveCompat(w, req, size)
	}
}

// resolveCompat keeps the long-standing behaviour: the end offset is only
// honoured when a start offset is present, so "bytes=-500" is the whole file.
// Accept-Ranges carries the requested end when one was honoured and the
// resource size otherwise.
func resolveCompat(w http.Header, req RangeRequest, size int64) (RangeResult, error) {
	var start int64
	if req.Start.Valid {
		start = req.Start.N
	}

	window := FullWindow(size)
	window.Start = start
	reported := size
	if req.Start.Valid && req.End.Valid {
		// compare before converting so an end near MaxInt64 cannot wrap
		window.End = min(req.End.N, size-1)
		reported = window.End
	}

	if start >= size || window.IsEmpty() {
		return RangeResult{}, fmt.Errorf("resolve range %s of %d: %w", window, size, ErrUnsatisfiableRange)
	}

	w.Set("Content-Range", "bytes")
	w.Set("Accept-Ranges", fmt.Sprintf("bytes %d-%d/%d", start, reported, size))

	return RangeResult{Window: window, Partial: true}, nil
}

func resolveStrict(w http.Header, req RangeRequest, size int64) (RangeResult, error) {
	var window Window

	switch {
	case req.Start.Valid && req.End.Valid:
		if req.End.N < req.Start.N {
			return RangeResult{}, fmt.Errorf("resolve range %d-%d: %w", req.Start.N, req.End.N, ErrUnsatisfiableRange)
		}
		window = Window{Start: req.Start.N, End: min(req.End.N, size-1)}
	case req.Start.Valid:
		window = Window{Start: req.Start.N, End: size - 1}
	case req.End.Valid:
		if req.End.N == 0 {
			return RangeResult{}, fmt.Errorf("resolve suffix range of 0 bytes: %w", ErrUnsatisfiableRange)
		}
		window = Window{Start: max(size-req.End.N, 0), End: size - 1}
	default:
		return RangeResult{Window: FullWindow(size)}, nil
	}

	if window.Start >= size {
		return RangeResult{}, fmt.Errorf("resolve range %s of %d: %w", window, size, ErrUnsatisfiableRange)
	}

	w.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", window.Start, window.End, size))

	return RangeResult{Window: window, Partial: true}, nil
}
