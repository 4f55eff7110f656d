package domain

import (
	"time"

	"github.com/google/uuid"
)

// StoredGraph — граф в хранилище графов (PostgreSQL).
type StoredGraph struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
