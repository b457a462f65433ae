// Package http serves a directory tree over HTTP.
//
// Every GET or HEAD request is resolved against the serve root. Directories
// render an HTML listing; files go through the delivery Pipeline:
//
//  1. Validate: Cache-Control, Etag and Last-Modified are always set; a
//     matching conditional request ends with 304 and no body.
//  2. Negotiate: gzip or deflate is chosen from Accept-Encoding.
//  3. Range: a single "bytes=" range selects the serving window.
//  4. Type: Content-Type from the file name or content, with a UTF-8 charset.
//  5. Stream: exactly the window is copied, through the compressor if one
//     was chosen.
//
// Lookup failures of any kind answer 404 with an empty body. Errors after
// the status line has been written abort the connection.
//
// # Usage
//
//	root, _ := os.OpenRoot("./public")
//	storage := filesystem.NewFileStorage(root)
//
//	handlerCfg := http.HandlerConfig{
//	    Mode:        statica.ModeCompat,
//	    MaxAge:      10 * time.Second,
//	    Compression: http.CompressionConfig{Enabled: true, Level: -1},
//	    Listing:     true,
//	}
//	handler := http.NewHandler(&handlerCfg, storage)
//	http.ListenAndServe(":8080", handler.Router())
//
// # Middleware
//
// RequestID tags each request with an X-Request-Id, RequestLogger writes one
// slog line per request, and CORS can be enabled through CORSConfig.
package http
