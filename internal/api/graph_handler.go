package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/shaiso/daxgen/internal/graphio"
)

// ListGraphs возвращает сохранённые графы.
// GET /api/v1/graphs
func (h *Handler) ListGraphs(w http.ResponseWriter, r *http.Request) {
	if h.graphs == nil {
		NotConfigured(w, "graph store is not configured")
		return
	}

	graphs, err := h.graphs.List(r.Context())
	if HandleError(w, h.logger, err) {
		return
	}

	result := make([]GraphResponse, len(graphs))
	for i, g := range graphs {
		result[i] = GraphFromDomain(g)
	}

	List(w, result, len(result))
}

// GetGraph возвращает описание графа или, с ?export=, сам граф.
// GET /api/v1/graphs/{name}?export=graphml
func (h *Handler) GetGraph(w http.ResponseWriter, r *http.Request) {
	if h.graphs == nil {
		NotConfigured(w, "graph store is not configured")
		return
	}
	name := r.PathValue("name")

	export := r.URL.Query().Get("export")
	if export == "" {
		stored, err := h.graphs.Get(r.Context(), name)
		if HandleError(w, h.logger, err) {
			return
		}
		Success(w, GraphFromDomain(*stored))
		return
	}

	codec, err := h.registry.Get(export)
	if HandleError(w, h.logger, err) {
		return
	}
	enc, ok := codec.(graphio.Encoder)
	if !ok {
		HandleError(w, h.logger, fmt.Errorf("%w: %s", graphio.ErrEncodeNotSupported, codec.Name()))
		return
	}

	g, err := h.graphs.LoadGraph(r.Context(), name)
	if HandleError(w, h.logger, err) {
		return
	}

	var buf bytes.Buffer
	if err := enc.Encode(&buf, g); err != nil {
		InternalError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// PutGraph сохраняет граф из тела запроса под именем.
// PUT /api/v1/graphs/{name}?input=json
func (h *Handler) PutGraph(w http.ResponseWriter, r *http.Request) {
	if h.graphs == nil {
		NotConfigured(w, "graph store is not configured")
		return
	}

	input := r.URL.Query().Get("input")
	if input == "" {
		input = DefaultInput
	}
	codec, err := h.registry.Get(input)
	if HandleError(w, h.logger, err) {
		return
	}

	g, err := codec.Decode(http.MaxBytesReader(w, r.Body, h.maxBody))
	if HandleError(w, h.logger, err) {
		return
	}

	stored, err := h.graphs.Save(r.Context(), r.PathValue("name"), g)
	if HandleError(w, h.logger, err) {
		return
	}

	Created(w, GraphFromDomain(*stored))
}

// DeleteGraph удаляет граф.
// DELETE /api/v1/graphs/{name}
func (h *Handler) DeleteGraph(w http.ResponseWriter, r *http.Request) {
	if h.graphs == nil {
		NotConfigured(w, "graph store is not configured")
		return
	}

	err := h.graphs.Delete(r.Context(), r.PathValue("name"))
	if HandleError(w, h.logger, err) {
		return
	}

	NoContent(w)
}

// CompileStoredGraph компилирует сохранённый граф.
// GET /api/v1/graphs/{name}/workflow?format=json
func (h *Handler) CompileStoredGraph(w http.ResponseWriter, r *http.Request) {
	if h.graphs == nil {
		NotConfigured(w, "graph store is not configured")
		return
	}

	g, err := h.graphs.LoadGraph(r.Context(), r.PathValue("name"))
	if HandleError(w, h.logger, err) {
		return
	}

	h.compile(w, r, g)
}
