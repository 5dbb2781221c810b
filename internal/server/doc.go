// Package server exposes workbooks over a JSON HTTP API.
//
// Routes:
//
//	POST   /workbooks                   create a workbook, optionally from a JSON body
//	GET    /workbooks                   list workbook IDs
//	GET    /workbooks/{id}              cells with contents and values
//	DELETE /workbooks/{id}              delete a workbook
//	GET    /workbooks/{id}/cells/{name} one cell
//	PUT    /workbooks/{id}/cells/{name} set a cell from {"contents": "..."}
//	GET    /workbooks/{id}/graph        dependency graph (?format=dot|svg, ?values=true)
//	GET    /healthz                     liveness
//	GET    /metrics                     Prometheus metrics, when configured
//
// Workbooks are loaded from the configured storage.Repository on first use
// and kept in memory as calc.Engine values. Loads of different workbooks
// proceed in parallel. Mutations, saves and deletes of one workbook are
// serialized, and every successful mutation is written back before the
// response is sent.
//
// Errors are returned as {"error": {"code": "...", "message": "..."}} with
// 400 for invalid input, 404 for unknown workbooks, and 409 when a cell
// would create a circular dependency.
package server
