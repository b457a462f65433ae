package statica

import (
	"fmt"
	"time"
)

// ResourceMetadata describes a file or directory at the moment of a request.
// It is looked up per request and never cached.
type ResourceMetadata struct {
	Size       int64     `json:"size"`
	ChangeTime time.Time `json:"change_time"`
	ModTime    time.Time `json:"mod_time"`
	IsDir      bool      `json:"is_dir"`
}

// Validator is the pair of cache validators derived from ResourceMetadata.
type Validator struct {
	ETag         string
	LastModified string
}

// DirEntry is a single child of a directory, used by listings.
type DirEntry struct {
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Offset is an optional byte offset parsed from a Range header.
type Offset struct {
	N     int64
	Valid bool
}

// Some returns a present Offset.
func Some(n int64) Offset {
	return Offset{N: n, Valid: true}
}

// RangeRequest is the parsed form of "bytes=<start>-<end>".
// Either side may be absent.
type RangeRequest struct {
	Start Offset
	End   Offset
}

// Window is an inclusive byte interval [Start, End].
// The empty window {0, -1} is used for zero length resources.
type Window struct {
	Start int64
	End   int64
}

// FullWindow returns the window covering a whole resource of the given size.
func FullWindow(size int64) Window {
	return Window{Start: 0, End: size - 1}
}

// Len returns the number of bytes in the window.
func (w Window) Len() int64 {
	if w.End < w.Start {
		return 0
	}
	return w.End - w.Start + 1
}

// IsEmpty reports whether the window contains no bytes.
func (w Window) IsEmpty() bool {
	return w.Len() == 0
}

func (w Window) String() string {
	return fmt.Sprintf("%d-%d", w.Start, w.End)
}

// ProtocolMode selects how strictly the protocol decisions follow RFC 9110.
type ProtocolMode string

const (
	ModeCompat ProtocolMode = "compat"
	ModeStrict ProtocolMode = "strict"
)

func (m ProtocolMode) IsValid() bool {
	switch m {
	case ModeCompat, ModeStrict:
		return true
	default:
		return false
	}
}

func ParseProtocolMode(s string) (ProtocolMode, error) {
	mode := ProtocolMode(s)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid protocol mode: %s (valid modes: compat, strict)", s)
	}
	return mode, nil
}
