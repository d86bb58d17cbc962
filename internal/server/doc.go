// Package server hosts the Fiber HTTP service that fronts the built asset
// tree. It bootstraps Fiber, attaches recover and request-id middlewares,
// mounts the negotiating /dist handler, the raw /public passthrough and the
// /-/health diagnostics route. The asset tree is already built and
// compressed by the time NewApp is called; nothing here mutates it.
package server
