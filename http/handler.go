package http

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sagarc03/statica"
)

// Storage is the file system the handler serves from.
type Storage interface {
	Stat(ctx context.Context, path string) (statica.ResourceMetadata, error)
	Open(ctx context.Context, path string, window statica.Window) (io.ReadCloser, error)
	ReadDir(ctx context.Context, path string) ([]statica.DirEntry, error)
	ContentType(ctx context.Context, path string) string
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled" yaml:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods" yaml:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers" yaml:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers" yaml:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials" yaml:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" yaml:"max_age"`
}

type HandlerConfig struct {
	Mode        statica.ProtocolMode
	MaxAge      time.Duration
	Compression CompressionConfig
	Listing     bool
	CORS        CORSConfig
}

// Handler serves a directory tree over HTTP.
type Handler struct {
	config   HandlerConfig
	storage  Storage
	pipeline *Pipeline
}

// NewHandler creates a new Handler with the given configuration and storage.
func NewHandler(config *HandlerConfig, storage Storage) *Handler {
	return &Handler{
		config:  *config,
		storage: storage,
		pipeline: NewPipeline(storage, PipelineConfig{
			Mode:        config.Mode,
			MaxAge:      config.MaxAge,
			Compression: config.Compression,
		}),
	}
}

// Router returns an http.Handler serving GET and HEAD for every path.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RequestLogger)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/", h.handleGet)
	r.Get("/*", h.handleGet)
	r.Head("/", h.handleGet)
	r.Head("/*", h.handleGet)

	return r
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	path, err := statica.CleanPath(r.URL.Path)
	if err != nil {
		HandleError(w, err)
		return
	}

	meta, err := h.storage.Stat(r.Context(), path)
	if err != nil {
		slog.Debug("lookup failed", "path", path, "err", err)
		writeNotFound(w)
		return
	}

	if meta.IsDir {
		h.handleDir(w, r, path)
		return
	}

	h.pipeline.Serve(w, r, path, meta)
}

func (h *Handler) handleDir(w http.ResponseWriter, r *http.Request, path string) {
	if !h.config.Listing {
		HandleError(w, fmt.Errorf("serve %s: %w: %w", path, statica.ErrNotFound, ErrListingDisabled))
		return
	}

	body, err := renderListing(r.Context(), h.storage, path, r.URL.Path)
	if err != nil {
		HandleError(w, err)
		return
	}

	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	WriteHTML(w, http.StatusOK, body, r.Method == http.MethodHead)
}
