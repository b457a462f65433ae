package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sagarc03/statica"
)

// CompressionConfig controls response content-encoding.
type CompressionConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Level   int  `mapstructure:"level" yaml:"level" validate:"min=-1,max=9"`
}

// PipelineConfig is the read-only configuration of a Pipeline.
type PipelineConfig struct {
	Mode        statica.ProtocolMode
	MaxAge      time.Duration
	Compression CompressionConfig
}

// Pipeline delivers a single file: validate, negotiate, range, type, stream.
// It is safe for concurrent use; all request state lives on the stack.
type Pipeline struct {
	storage Storage
	config  PipelineConfig
}

// NewPipeline creates a Pipeline reading files from storage.
func NewPipeline(storage Storage, config PipelineConfig) *Pipeline {
	if !config.Mode.IsValid() {
		config.Mode = statica.ModeCompat
	}
	return &Pipeline{
		storage: storage,
		config:  config,
	}
}

// Serve writes the file at path to w. meta must have been looked up for
// this request. Every header is final before the first body byte. A failure
// after the status line is written aborts the connection.
func (p *Pipeline) Serve(w http.ResponseWriter, r *http.Request, path string, meta statica.ResourceMetadata) {
	ctx := r.Context()
	h := w.Header()

	cache := statica.EvaluateCache(h, r.Header, meta, statica.CachePolicy{
		MaxAge: p.config.MaxAge,
		Mode:   p.config.Mode,
	})
	if cache.Hit {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	enc := statica.EncodingNone
	if p.config.Compression.Enabled {
		enc = statica.NegotiateEncoding(h, r.Header)
	}

	rng, err := statica.ResolveRange(h, r.Header.Get("Range"), meta.Size, p.config.Mode)
	if err != nil {
		clearRepresentation(h)
		h.Set("Content-Range", fmt.Sprintf("bytes */%d", meta.Size))
		HandleError(w, err)
		return
	}

	// Content-Range counts bytes of the selected representation, so a strict
	// partial response is sent unencoded.
	if rng.Partial && p.config.Mode == statica.ModeStrict && enc != statica.EncodingNone {
		h.Del("Content-Encoding")
		enc = statica.EncodingNone
	}

	h.Set("Content-Type", p.storage.ContentType(ctx, path)+"; charset=UTF-8")

	status := http.StatusOK
	if rng.Partial && p.config.Mode == statica.ModeStrict {
		status = http.StatusPartialContent
	}

	if enc == statica.EncodingNone {
		h.Set("Content-Length", strconv.FormatInt(rng.Window.Len(), 10))
	} else if p.config.Mode == statica.ModeStrict {
		h.Add("Vary", "Accept-Encoding")
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(status)
		return
	}

	content, err := p.storage.Open(ctx, path, rng.Window)
	if err != nil {
		clearRepresentation(h)
		HandleError(w, err)
		return
	}
	defer func() { _ = content.Close() }()

	zw, compressed, err := enc.NewWriter(w, p.config.Compression.Level)
	if err != nil {
		clearRepresentation(h)
		HandleError(w, err)
		return
	}

	w.WriteHeader(status)

	slog.Debug("streaming file",
		"path", path,
		"window", rng.Window.String(),
		"encoding", enc.String(),
	)

	src := &ctxReader{ctx: ctx, r: content}
	if compressed {
		err = copyCompressed(zw, src)
	} else {
		_, err = io.Copy(w, src)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			slog.Debug("client went away during stream", "path", path, "err", err)
		} else {
			slog.Error("stream failed", "path", path, "err", err)
		}
		panic(http.ErrAbortHandler)
	}
}

// clearRepresentation drops the headers that describe a body which will not
// be sent, before an error response is written in its place.
func clearRepresentation(h http.Header) {
	for _, k := range []string{"Content-Encoding", "Content-Length", "Content-Range", "Accept-Ranges", "Vary"} {
		h.Del(k)
	}
}

func copyCompressed(zw io.WriteCloser, src io.Reader) error {
	if _, err := io.Copy(zw, src); err != nil {
		_ = zw.Close()
		return fmt.Errorf("copy compressed: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush compressed: %w", err)
	}
	return nil
}

// ctxReader stops reading as soon as the request context is done, so a
// disconnected client releases the file promptly.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
