package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shaiso/daxgen/internal/graph"
	"github.com/shaiso/daxgen/internal/mq"
	"github.com/shaiso/daxgen/internal/service"
)

// Представления результата компиляции (?format=).
const (
	FormatDAX     = "dax"
	FormatCatalog = "catalog"
	FormatJSON    = "json"
)

// DefaultInput — формат тела запроса по умолчанию.
const DefaultInput = "json"

const readyTimeout = 2 * time.Second

// Health отвечает на проверку живости.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "ok %s", h.uptime())
}

// Ready проверяет зависимости: PostgreSQL и брокер, если настроены.
// GET /readyz
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.graphs != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := h.graphs.Ping(ctx); err != nil {
			h.logger.Warn("graph store is not ready", "error", err)
			NotConfigured(w, "graph store is unavailable")
			return
		}
	}
	if h.enqueuer != nil && !h.enqueuer.Ready() {
		NotConfigured(w, "message broker is unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ready")
}

// ListFormats возвращает форматы графов.
// GET /api/v1/formats
func (h *Handler) ListFormats(w http.ResponseWriter, r *http.Request) {
	formats := h.registry.Formats()

	result := make([]FormatResponse, len(formats))
	for i, f := range formats {
		result[i] = FormatFromInfo(f)
	}

	List(w, result, len(result))
}

// CompileWorkflow компилирует граф из тела запроса.
// POST /api/v1/workflows?input=graphml&format=json&name=lsst&var=k=v
func (h *Handler) CompileWorkflow(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("input")
	if input == "" {
		input = DefaultInput
	}
	codec, err := h.registry.Get(input)
	if HandleError(w, h.logger, err) {
		return
	}

	body := http.MaxBytesReader(w, r.Body, h.maxBody)
	g, err := codec.Decode(body)
	if HandleError(w, h.logger, err) {
		return
	}

	h.compile(w, r, g)
}

// EnqueueRequest ставит запрос на генерацию в очередь.
// POST /api/v1/requests
func (h *Handler) EnqueueRequest(w http.ResponseWriter, r *http.Request) {
	if h.enqueuer == nil {
		NotConfigured(w, "message queue is not configured")
		return
	}

	var req GenerateRequestBody
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.Source == "" || req.WorkflowPath == "" || req.CatalogPath == "" {
		BadRequest(w, "source, workflow_path and catalog_path are required")
		return
	}

	id, err := h.enqueuer.PublishGenerate(r.Context(), mq.GenerateRequest{
		Source:       req.Source,
		WorkflowPath: req.WorkflowPath,
		CatalogPath:  req.CatalogPath,
		Name:         req.Name,
		Vars:         req.Vars,
	})
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Accepted(w, EnqueuedResponse{MessageID: id})
}

// compile компилирует граф и пишет результат в выбранном представлении.
func (h *Handler) compile(w http.ResponseWriter, r *http.Request, g *graph.Graph) {
	opts, err := optionsFromQuery(r)
	if err != nil {
		BadRequest(w, err.Error())
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", FormatDAX, FormatCatalog, FormatJSON:
	default:
		BadRequest(w, fmt.Sprintf("unknown format %q", format))
		return
	}

	art, err := h.service.Compile(r.Context(), g, opts)
	if HandleError(w, h.logger, err) {
		return
	}

	w.Header().Set("X-Run-Id", art.Workflow.RunID.String())
	switch format {
	case FormatJSON:
		Success(w, WorkflowFromArtifacts(art))
	case FormatCatalog:
		w.Header().Set("Content-Type", service.ContentTypeCatalog)
		w.WriteHeader(http.StatusOK)
		w.Write(art.Catalog)
	default:
		w.Header().Set("Content-Type", service.ContentTypeDAX)
		w.WriteHeader(http.StatusOK)
		w.Write(art.DAX)
	}
}

// optionsFromQuery читает name и var=key=value из запроса.
func optionsFromQuery(r *http.Request) (service.Options, error) {
	q := r.URL.Query()
	opts := service.Options{Name: q.Get("name")}

	for _, kv := range q["var"] {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return opts, fmt.Errorf("invalid var %q, expected key=value", kv)
		}
		if opts.Vars == nil {
			opts.Vars = make(map[string]string)
		}
		opts.Vars[k] = v
	}
	return opts, nil
}
