package graphio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/shaiso/daxgen/internal/graph"
)

// nodeLinkSchemaJSON — схема node-link документа.
//
// Рёбра лежат в links или edges; id, source и target — строки или
// числа.
const nodeLinkSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["nodes"],
  "properties": {
    "directed": {"type": "boolean"},
    "multigraph": {"type": "boolean"},
    "graph": {"type": "object"},
    "nodes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {"id": {"$ref": "#/$defs/nodeId"}}
      }
    },
    "links": {"$ref": "#/$defs/edges"},
    "edges": {"$ref": "#/$defs/edges"}
  },
  "$defs": {
    "nodeId": {"type": ["string", "number"]},
    "edges": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["source", "target"],
        "properties": {
          "source": {"$ref": "#/$defs/nodeId"},
          "target": {"$ref": "#/$defs/nodeId"}
        }
      }
    }
  }
}`

var nodeLinkSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource("nodelink.json", strings.NewReader(nodeLinkSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add node-link schema: %w", err)
	}
	schema, err := compiler.Compile("nodelink.json")
	if err != nil {
		return nil, fmt.Errorf("compile node-link schema: %w", err)
	}
	return schema, nil
})

// NodeLinkCodec — node-link JSON документ:
//
//	{"directed": true, "nodes": [{"id": "a", "lfn": "a.fits"}],
//	 "links": [{"source": "a", "target": "T1"}]}
type NodeLinkCodec struct{}

// NewNodeLinkCodec создаёт формат node-link.
func NewNodeLinkCodec() *NodeLinkCodec {
	return &NodeLinkCodec{}
}

// Name возвращает имя формата.
func (c *NodeLinkCodec) Name() string { return "json" }

// Extensions возвращает расширения файлов.
func (c *NodeLinkCodec) Extensions() []string { return []string{"json"} }

// Decode читает node-link документ.
//
// Документ проверяется по схеме до построения графа. Все атрибуты узла,
// кроме id, попадают в Node.Attrs. Числовые id форматируются в десятичном
// виде.
func (c *NodeLinkCodec) Decode(r io.Reader) (*graph.Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, decodeError(c.Name(), err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, decodeError(c.Name(), err)
	}

	schema, err := nodeLinkSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, decodeError(c.Name(), schemaViolation(err))
	}

	root := doc.(map[string]any)
	g := graph.New()

	for _, item := range root["nodes"].([]any) {
		attrs := item.(map[string]any)
		id := FormatID(attrs["id"])
		delete(attrs, "id")
		g.AddNode(id, attrs)
	}

	edges, _ := root["links"].([]any)
	if edges == nil {
		edges, _ = root["edges"].([]any)
	}
	for _, item := range edges {
		e := item.(map[string]any)
		g.AddEdge(FormatID(e["source"]), FormatID(e["target"]))
	}

	return g, nil
}

// Encode записывает граф node-link документом.
func (c *NodeLinkCodec) Encode(w io.Writer, g *graph.Graph) error {
	type document struct {
		Directed   bool             `json:"directed"`
		Multigraph bool             `json:"multigraph"`
		Graph      map[string]any   `json:"graph"`
		Nodes      []map[string]any `json:"nodes"`
		Links      []map[string]any `json:"links"`
	}

	doc := document{
		Directed: true,
		Graph:    map[string]any{},
		Nodes:    make([]map[string]any, 0, g.Len()),
		Links:    make([]map[string]any, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		item := make(map[string]any, len(n.Attrs)+1)
		for k, v := range n.Attrs {
			item[k] = v
		}
		item["id"] = n.ID
		doc.Nodes = append(doc.Nodes, item)
	}
	for _, e := range g.Edges() {
		doc.Links = append(doc.Links, map[string]any{"source": e.Source, "target": e.Target})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// schemaViolation сводит ошибку валидации к первой конкретной причине
// с JSON pointer.
func schemaViolation(err error) error {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	for len(verr.Causes) > 0 {
		verr = verr.Causes[0]
	}
	loc := verr.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Errorf("schema violation at %s: %s", loc, verr.Message)
}

// FormatID приводит идентификатор узла к строке.
// Целые числа записываются без дробной части.
func FormatID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case json.Number:
		return id.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}
