package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/daxgen/internal/domain"
	"github.com/shaiso/daxgen/internal/graphio"
	"github.com/shaiso/daxgen/internal/service"
)

// Workflow DTOs

// WorkflowResponse — результат компиляции графа.
type WorkflowResponse struct {
	RunID     uuid.UUID    `json:"run_id"`
	Name      string       `json:"name"`
	CreatedAt time.Time    `json:"created_at"`
	Stats     domain.Stats `json:"stats"`
	Roots     []string     `json:"roots"`
	DAX       string       `json:"dax"`
	Catalog   string       `json:"catalog"`
}

// WorkflowFromArtifacts конвертирует service.Artifacts в WorkflowResponse.
func WorkflowFromArtifacts(a *service.Artifacts) WorkflowResponse {
	return WorkflowResponse{
		RunID:     a.Workflow.RunID,
		Name:      a.Workflow.Name,
		CreatedAt: a.Workflow.CreatedAt,
		Stats:     a.Workflow.Stats(),
		Roots:     a.Workflow.Roots(),
		DAX:       string(a.DAX),
		Catalog:   string(a.Catalog),
	}
}

// GenerateRequestBody — запрос на асинхронную генерацию.
type GenerateRequestBody struct {
	Source       string            `json:"source"`
	WorkflowPath string            `json:"workflow_path"`
	CatalogPath  string            `json:"catalog_path"`
	Name         string            `json:"name,omitempty"`
	Vars         map[string]string `json:"vars,omitempty"`
}

// EnqueuedResponse — ответ о постановке запроса в очередь.
type EnqueuedResponse struct {
	MessageID string `json:"message_id"`
}

// Graph DTOs

// GraphResponse — описание сохранённого графа.
type GraphResponse struct {
	Name      string    `json:"name"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GraphFromDomain конвертирует domain.StoredGraph в GraphResponse.
func GraphFromDomain(g domain.StoredGraph) GraphResponse {
	return GraphResponse{
		Name:      g.Name,
		Nodes:     g.Nodes,
		Edges:     g.Edges,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// Format DTOs

// FormatResponse — формат графа.
type FormatResponse struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
	CanEncode  bool     `json:"can_encode"`
}

// FormatFromInfo конвертирует graphio.FormatInfo в FormatResponse.
func FormatFromInfo(f graphio.FormatInfo) FormatResponse {
	return FormatResponse{
		Name:       f.Name,
		Extensions: f.Extensions,
		CanEncode:  f.CanEncode,
	}
}
