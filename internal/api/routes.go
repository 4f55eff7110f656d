package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	chain := Chain(
		Recovery(h.logger),
		Tracing("daxgen.api"),
		Metrics(h.service.Metrics()),
		Logging(h.logger),
	)

	// Health и metrics
	mux.Handle("GET /healthz", http.HandlerFunc(h.Health))
	mux.Handle("GET /readyz", http.HandlerFunc(h.Ready))
	mux.Handle("GET /metrics", h.service.Metrics().Handler())

	// Formats
	mux.Handle("GET /api/v1/formats", chain(http.HandlerFunc(h.ListFormats)))

	// Workflows
	mux.Handle("POST /api/v1/workflows", chain(http.HandlerFunc(h.CompileWorkflow)))
	mux.Handle("POST /api/v1/requests", chain(http.HandlerFunc(h.EnqueueRequest)))

	// Graphs
	mux.Handle("GET /api/v1/graphs", chain(http.HandlerFunc(h.ListGraphs)))
	mux.Handle("GET /api/v1/graphs/{name}", chain(http.HandlerFunc(h.GetGraph)))
	mux.Handle("PUT /api/v1/graphs/{name}", chain(http.HandlerFunc(h.PutGraph)))
	mux.Handle("DELETE /api/v1/graphs/{name}", chain(http.HandlerFunc(h.DeleteGraph)))
	mux.Handle("GET /api/v1/graphs/{name}/workflow", chain(http.HandlerFunc(h.CompileStoredGraph)))
}
