// Package api hosts the HTTP server, middleware, and handlers. Routes:
//   - POST /search runs an orchestrated search; always 200 with a
//     {success, message|error} body.
//   - GET /resultados.{json,csv,xlsx,pdf} streams the last exports.
//   - GET /geocode?q= relays a LocationIQ lookup.
//   - GET /healthz, /readyz, /metrics for probes and Prometheus.
//   - Everything else falls through to the optional static UI directory.
package api
