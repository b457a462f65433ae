// Package statica implements the HTTP protocol decisions made when serving a
// file from disk: conditional caching, single byte-range retrieval and
// content-encoding negotiation.
//
// The package is transport agnostic beyond http.Header. It never performs I/O;
// every function derives its answer from request headers and ResourceMetadata.
// The http package composes these into a delivery pipeline, and the
// filesystem package supplies metadata and byte windows from a sandboxed root.
//
// # Key Components
//
//   - EvaluateCache: derives the Validator (ETag, Last-Modified) and decides 304 vs miss
//   - ResolveRange: turns a Range header into an inclusive serving Window
//   - ChooseEncoding: picks gzip, deflate or nothing from Accept-Encoding
//
// # Protocol Modes
//
// Two modes control how closely the decisions follow RFC 9110:
//
//   - ModeCompat: reproduces the behaviour existing clients were built against.
//     Both validators must match for a 304, ranges are answered with 200 and a
//     literal "Content-Range: bytes", and suffix ranges serve the full resource.
//   - ModeStrict: If-None-Match takes precedence, partial content is 206 with a
//     well formed Content-Range, and suffix ranges are honoured.
//
// # Example Usage
//
//	res := statica.EvaluateCache(w.Header(), r.Header, meta, statica.CachePolicy{MaxAge: 10 * time.Second})
//	if res.Hit {
//	    w.WriteHeader(http.StatusNotModified)
//	    return
//	}
//
//	enc := statica.NegotiateEncoding(w.Header(), r.Header)
//	rng, err := statica.ResolveRange(w.Header(), r.Header.Get("Range"), meta.Size, statica.ModeCompat)
package statica
