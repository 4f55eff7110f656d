package graphio

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/shaiso/daxgen/internal/graph"
)

func init() {
	// Конкретные типы, которые встречаются в map[string]any атрибутов
	gob.Register([]any{})
	gob.Register(map[string]any{})
}

// GobCodec — снимок графа в encoding/gob.
type GobCodec struct{}

// NewGobCodec создаёт формат gob.
func NewGobCodec() *GobCodec {
	return &GobCodec{}
}

// Name возвращает имя формата.
func (c *GobCodec) Name() string { return "gob" }

// Extensions возвращает расширения файлов.
func (c *GobCodec) Extensions() []string { return []string{"gob"} }

// Decode читает снимок графа.
func (c *GobCodec) Decode(r io.Reader) (*graph.Graph, error) {
	var s graph.Snapshot
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return nil, decodeError(c.Name(), err)
	}
	return graph.FromSnapshot(&s), nil
}

// Encode записывает снимок графа.
func (c *GobCodec) Encode(w io.Writer, g *graph.Graph) error {
	if err := gob.NewEncoder(w).Encode(g.Snapshot()); err != nil {
		return fmt.Errorf("encode gob: %w", err)
	}
	return nil
}

// MsgpackCodec — снимок графа в MessagePack.
type MsgpackCodec struct{}

// NewMsgpackCodec создаёт формат msgpack.
func NewMsgpackCodec() *MsgpackCodec {
	return &MsgpackCodec{}
}

// Name возвращает имя формата.
func (c *MsgpackCodec) Name() string { return "msgpack" }

// Extensions возвращает расширения файлов.
func (c *MsgpackCodec) Extensions() []string { return []string{"msgpack", "mpk"} }

// Decode читает снимок графа.
func (c *MsgpackCodec) Decode(r io.Reader) (*graph.Graph, error) {
	var s graph.Snapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, decodeError(c.Name(), err)
	}
	return graph.FromSnapshot(&s), nil
}

// Encode записывает снимок графа.
func (c *MsgpackCodec) Encode(w io.Writer, g *graph.Graph) error {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(g.Snapshot()); err != nil {
		return fmt.Errorf("encode msgpack: %w", err)
	}
	return nil
}
