// Package api exposes the fleet monitor over HTTP.
//
// Read routes serve cached views of the fleet:
//
//	GET  /healthz
//	GET  /api/status                    statuses keyed by service id
//	GET  /api/services                  ?category= filters, ?resources=true attaches samples
//	GET  /api/services/{id}
//	GET  /api/layers
//	GET  /api/metrics                   summary, process and runtime stats
//	GET  /api/system/stats              process and runtime stats with cache ages
//	GET  /api/cache/info
//	GET  /metrics                       Prometheus exposition
//
// Mutation routes are guarded by an auth.Guard:
//
//	POST /api/cache/clear
//	POST /api/services/{id}/invalidate
//
// Errors are JSON objects of the form {"error": "..."}. Unknown services map
// to 404, refresh failures without a cached value to 503.
package api
