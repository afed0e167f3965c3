// Package http exposes the file-manager connector over HTTP.
//
// A single route accepts GET and POST requests and dispatches on the mode
// parameter. Uploads are multipart bodies answered inside a textarea so the
// browser UI can read them from a hidden iframe; folder downloads are
// streamed as ZIP archives.
package http
