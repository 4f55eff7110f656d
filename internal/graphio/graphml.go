package graphio

import (
	"encoding/xml"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/shaiso/daxgen/internal/graph"
)

const graphmlNamespace = "http://graphml.graphdrawing.org/xmlns"

type graphmlDoc struct {
	XMLName xml.Name       `xml:"graphml"`
	Xmlns   string         `xml:"xmlns,attr,omitempty"`
	Keys    []graphmlKey   `xml:"key"`
	Graphs  []graphmlGraph `xml:"graph"`
}

type graphmlKey struct {
	ID      string  `xml:"id,attr"`
	For     string  `xml:"for,attr"`
	Name    string  `xml:"attr.name,attr"`
	Type    string  `xml:"attr.type,attr"`
	Default *string `xml:"default,omitempty"`
}

type graphmlGraph struct {
	ID          string        `xml:"id,attr,omitempty"`
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphmlNode `xml:"node"`
	Edges       []graphmlEdge `xml:"edge"`
}

type graphmlNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphmlData `xml:"data"`
}

type graphmlEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphmlData `xml:"data"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// GraphMLCodec — GraphML XML.
type GraphMLCodec struct{}

// NewGraphMLCodec создаёт формат GraphML.
func NewGraphMLCodec() *GraphMLCodec {
	return &GraphMLCodec{}
}

// Name возвращает имя формата.
func (c *GraphMLCodec) Name() string { return "graphml" }

// Extensions возвращает расширения файлов. .gml читается как GraphML.
func (c *GraphMLCodec) Extensions() []string { return []string{"graphml", "gml"} }

// Decode читает первый граф документа.
//
// Значения data приводятся к attr.type ключа; значения по умолчанию
// ключей назначаются узлам без соответствующего data.
func (c *GraphMLCodec) Decode(r io.Reader) (*graph.Graph, error) {
	var doc graphmlDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, decodeError(c.Name(), err)
	}
	if len(doc.Graphs) == 0 {
		return nil, decodeError(c.Name(), fmt.Errorf("document has no graph element"))
	}

	keys := make(map[string]graphmlKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.For == "node" || k.For == "all" || k.For == "" {
			keys[k.ID] = k
		}
	}

	src := doc.Graphs[0]
	g := graph.New()

	for _, n := range src.Nodes {
		attrs := make(map[string]any, len(n.Data))

		// Значения по умолчанию
		for _, k := range doc.Keys {
			if _, ok := keys[k.ID]; !ok || k.Default == nil {
				continue
			}
			v, err := parseTyped(k.Type, *k.Default)
			if err != nil {
				return nil, decodeError(c.Name(), fmt.Errorf("key %s default: %w", k.ID, err))
			}
			attrs[attrName(k)] = v
		}

		for _, d := range n.Data {
			k, ok := keys[d.Key]
			if !ok {
				attrs[d.Key] = d.Value
				continue
			}
			v, err := parseTyped(k.Type, d.Value)
			if err != nil {
				return nil, decodeError(c.Name(), fmt.Errorf("node %s, key %s: %w", n.ID, d.Key, err))
			}
			attrs[attrName(k)] = v
		}

		g.AddNode(n.ID, attrs)
	}

	for _, e := range src.Edges {
		g.AddEdge(e.Source, e.Target)
	}

	return g, nil
}

// Encode записывает граф GraphML документом.
func (c *GraphMLCodec) Encode(w io.Writer, g *graph.Graph) error {
	names, types := attrNames(g)

	doc := graphmlDoc{
		Xmlns:  graphmlNamespace,
		Keys:   make([]graphmlKey, 0, len(names)),
		Graphs: []graphmlGraph{{ID: "G", EdgeDefault: "directed"}},
	}

	ids := make(map[string]string, len(names))
	for i, name := range names {
		id := fmt.Sprintf("d%d", i)
		ids[name] = id
		doc.Keys = append(doc.Keys, graphmlKey{ID: id, For: "node", Name: name, Type: types[name]})
	}

	out := &doc.Graphs[0]
	for _, n := range g.Nodes() {
		node := graphmlNode{ID: n.ID}
		for _, k := range sortedKeys(n.Attrs) {
			node.Data = append(node.Data, graphmlData{Key: ids[k], Value: formatTyped(n.Attrs[k])})
		}
		out.Nodes = append(out.Nodes, node)
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, graphmlEdge{Source: e.Source, Target: e.Target})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode graphml: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// attrName возвращает имя атрибута ключа; без attr.name — его id.
func attrName(k graphmlKey) string {
	if k.Name != "" {
		return k.Name
	}
	return k.ID
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
