// Package io reads and writes scan reports as JSON.
//
// A report captures everything a scan produced: the project records, the
// per-project failures and the resulting graph. It lets the render command
// redraw a graph without touching the solution again, and it is what the
// serve command exposes at /report.json.
//
// # JSON Format
//
//	{
//	  "scan_id": "7c9e6679-7425-40de-944b-e07fc1f90ae7",
//	  "solution": "/src/Shop.sln",
//	  "started": "2026-10-17T09:30:00Z",
//	  "duration_ms": 412,
//	  "projects": [
//	    {"name": "Shop.Web", "file_path": "/src/Web/Shop.Web.csproj",
//	     "dependencies": ["Shop.Core", "Serilog"]}
//	  ],
//	  "failures": [
//	    {"project": "Legacy", "path": "/src/Legacy/Legacy.csproj",
//	     "error": "PROJECT_LOAD: open project: ..."}
//	  ],
//	  "graph": {
//	    "nodes": [{"id": "Serilog", "kind": "dependency"}, ...],
//	    "edges": [{"from": "Shop.Web", "to": "Serilog"}, ...]
//	  }
//	}
//
// Only "projects" is needed to rebuild the graph; the "graph" section is
// derived data kept for external consumers.
package io
