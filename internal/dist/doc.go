// Package dist resolves a request for a built asset into the response body,
// content type and content encoding to send back. It picks the brotli
// variant, then the gzip variant, then the canonical file, based only on
// which tokens the client listed in Accept-Encoding and which siblings exist.
package dist
