package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/daxgen/internal/domain"
	"github.com/shaiso/daxgen/internal/graph"
)

const maxNameLength = 200

const schemaSQL = `
CREATE TABLE IF NOT EXISTS wf_graphs (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	node_count INTEGER NOT NULL,
	edge_count INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS wf_graph_nodes (
	graph_id UUID NOT NULL REFERENCES wf_graphs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	node_id  TEXT NOT NULL,
	attrs    JSONB NOT NULL DEFAULT '{}',
	PRIMARY KEY (graph_id, position)
);

CREATE TABLE IF NOT EXISTS wf_graph_edges (
	graph_id UUID NOT NULL REFERENCES wf_graphs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	source   TEXT NOT NULL,
	target   TEXT NOT NULL,
	PRIMARY KEY (graph_id, position)
);
`

// GraphRepo — хранилище именованных графов.
//
// Узлы и рёбра хранятся с позицией, чтобы загруженный граф сохранял
// порядок вставки исходного документа.
type GraphRepo struct {
	pool *pgxpool.Pool
}

// NewGraphRepo создаёт новый GraphRepo.
func NewGraphRepo(pool *pgxpool.Pool) *GraphRepo {
	return &GraphRepo{pool: pool}
}

// Ping проверяет доступность PostgreSQL.
func (r *GraphRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// EnsureSchema создаёт таблицы, если их нет.
func (r *GraphRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Save сохраняет граф под именем. Существующий граф с тем же именем
// заменяется целиком.
func (r *GraphRepo) Save(ctx context.Context, name string, g *graph.Graph) (*domain.StoredGraph, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	stored := &domain.StoredGraph{
		ID:        uuid.New(),
		Name:      name,
		Nodes:     g.Len(),
		Edges:     g.EdgeCount(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	nodeRows := make([][]any, 0, g.Len())
	for i, n := range g.Nodes() {
		attrs, err := json.Marshal(n.Attrs)
		if err != nil {
			return nil, fmt.Errorf("marshal attrs of node %s: %w", n.ID, err)
		}
		nodeRows = append(nodeRows, []any{stored.ID, i, n.ID, attrs})
	}
	edgeRows := make([][]any, 0, g.EdgeCount())
	for i, e := range g.Edges() {
		edgeRows = append(edgeRows, []any{stored.ID, i, e.Source, e.Target})
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		// Upsert по имени: id и created_at существующего графа сохраняются
		query := `
			INSERT INTO wf_graphs (id, name, node_count, edge_count, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (name) DO UPDATE
			SET node_count = EXCLUDED.node_count,
			    edge_count = EXCLUDED.edge_count,
			    updated_at = EXCLUDED.updated_at
			RETURNING id, created_at
		`
		err := tx.QueryRow(ctx, query,
			stored.ID,
			stored.Name,
			stored.Nodes,
			stored.Edges,
			stored.CreatedAt,
			stored.UpdatedAt,
		).Scan(&stored.ID, &stored.CreatedAt)
		if err != nil {
			return fmt.Errorf("upsert graph: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM wf_graph_nodes WHERE graph_id = $1`, stored.ID); err != nil {
			return fmt.Errorf("delete nodes: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM wf_graph_edges WHERE graph_id = $1`, stored.ID); err != nil {
			return fmt.Errorf("delete edges: %w", err)
		}

		// graph_id в строках должен совпасть с id после upsert
		for _, row := range nodeRows {
			row[0] = stored.ID
		}
		for _, row := range edgeRows {
			row[0] = stored.ID
		}

		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"wf_graph_nodes"},
			[]string{"graph_id", "position", "node_id", "attrs"},
			pgx.CopyFromRows(nodeRows),
		); err != nil {
			return fmt.Errorf("copy nodes: %w", err)
		}
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"wf_graph_edges"},
			[]string{"graph_id", "position", "source", "target"},
			pgx.CopyFromRows(edgeRows),
		); err != nil {
			return fmt.Errorf("copy edges: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stored, nil
}

// LoadGraph загружает граф по имени.
// Возвращает ErrNotFound, если графа нет.
func (r *GraphRepo) LoadGraph(ctx context.Context, name string) (*graph.Graph, error) {
	stored, err := r.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	g := graph.New()

	rows, err := r.pool.Query(ctx, `
		SELECT node_id, attrs
		FROM wf_graph_nodes
		WHERE graph_id = $1
		ORDER BY position
	`, stored.ID)
	if err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan node: %w", err)
		}
		var attrs map[string]any
		if err := json.Unmarshal(raw, &attrs); err != nil {
			rows.Close()
			return nil, fmt.Errorf("unmarshal attrs of node %s: %w", id, err)
		}
		g.AddNode(id, attrs)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}

	rows, err = r.pool.Query(ctx, `
		SELECT source, target
		FROM wf_graph_edges
		WHERE graph_id = $1
		ORDER BY position
	`, stored.ID)
	if err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var source, target string
		if err := rows.Scan(&source, &target); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		g.AddEdge(source, target)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}

	return g, nil
}

// Get возвращает описание графа по имени.
func (r *GraphRepo) Get(ctx context.Context, name string) (*domain.StoredGraph, error) {
	query := `
		SELECT id, name, node_count, edge_count, created_at, updated_at
		FROM wf_graphs
		WHERE name = $1
	`
	var s domain.StoredGraph
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&s.ID,
		&s.Name,
		&s.Nodes,
		&s.Edges,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get graph by name: %w", err)
	}
	return &s, nil
}

// List возвращает описания всех графов.
func (r *GraphRepo) List(ctx context.Context) ([]domain.StoredGraph, error) {
	query := `
		SELECT id, name, node_count, edge_count, created_at, updated_at
		FROM wf_graphs
		ORDER BY name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	defer rows.Close()

	var graphs []domain.StoredGraph
	for rows.Next() {
		var s domain.StoredGraph
		if err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.Nodes,
			&s.Edges,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan graph: %w", err)
		}
		graphs = append(graphs, s)
	}
	return graphs, rows.Err()
}

// Delete удаляет граф по имени.
func (r *GraphRepo) Delete(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM wf_graphs WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete graph: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func validateName(name string) error {
	if name == "" || len(name) > maxNameLength {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
