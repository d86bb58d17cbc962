// Package assetstore owns the on-disk asset tree that the build, compress and
// serve phases share. Every asset lives at <root>/<path>, with optional
// precompressed siblings <root>/<path>.br and <root>/<path>.gz. Writes go
// through a temp file + rename so a reader never observes a half-written
// file, and every lookup is confined to the root directory.
package assetstore
