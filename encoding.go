package statica

import (
	"fmt"
	"io"
	"net/http"
	"regexp"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Encoding is the content coding applied to a response body.
type Encoding int

const (
	EncodingNone Encoding = iota
	EncodingGzip
	EncodingDeflate
)

// DefaultCompressionLevel lets the compressor pick its balanced default.
const DefaultCompressionLevel = gzip.DefaultCompression

var (
	gzipToken    = regexp.MustCompile(`\bgzip\b`)
	deflateToken = regexp.MustCompile(`\bdeflate\b`)
)

// ChooseEncoding picks a single encoding from an Accept-Encoding value.
// gzip always wins over deflate; quality values are not considered.
func ChooseEncoding(acceptEncoding string) Encoding {
	switch {
	case acceptEncoding == "":
		return EncodingNone
	case gzipToken.MatchString(acceptEncoding):
		return EncodingGzip
	case deflateToken.MatchString(acceptEncoding):
		return EncodingDeflate
	default:
		return EncodingNone
	}
}

// NegotiateEncoding chooses the encoding for request headers r and sets
// Content-Encoding on w unless the choice is EncodingNone.
func NegotiateEncoding(w, r http.Header) Encoding {
	enc := ChooseEncoding(r.Get("Accept-Encoding"))
	if token := enc.Token(); token != "" {
		w.Set("Content-Encoding", token)
	}
	return enc
}

// Token returns the Content-Encoding token, or "" for EncodingNone.
func (e Encoding) Token() string {
	switch e {
	case EncodingGzip:
		return "gzip"
	case EncodingDeflate:
		return "deflate"
	case EncodingNone:
		return ""
	default:
		return ""
	}
}

func (e Encoding) String() string {
	if e == EncodingNone {
		return "identity"
	}
	return e.Token()
}

// NewWriter wraps dst with the compressor for e at the given level.
// HTTP "deflate" is the zlib format, so EncodingDeflate uses zlib framing.
// For EncodingNone it returns nil and ok=false; callers write to dst directly.
func (e Encoding) NewWriter(dst io.Writer, level int) (w io.WriteCloser, ok bool, err error) {
	switch e {
	case EncodingGzip:
		gz, err := gzip.NewWriterLevel(dst, level)
		if err != nil {
			return nil, false, fmt.Errorf("new gzip writer: %w", err)
		}
		return gz, true, nil
	case EncodingDeflate:
		zw, err := zlib.NewWriterLevel(dst, level)
		if err != nil {
			return nil, false, fmt.Errorf("new deflate writer: %w", err)
		}
		return zw, true, nil
	case EncodingNone:
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("new writer: unknown encoding %d", int(e))
	}
}
