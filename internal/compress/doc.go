// Package compress precomputes the brotli and gzip variants of every file in
// the asset tree. Each (file, codec) pair is an independent task; a failing
// task is logged and skipped so the server falls back to the canonical file.
package compress
