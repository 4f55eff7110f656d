package graphio

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/shaiso/daxgen/internal/graph"
)

type gexfDoc struct {
	XMLName xml.Name  `xml:"gexf"`
	Graph   gexfGraph `xml:"graph"`
}

type gexfGraph struct {
	DefaultEdgeType string           `xml:"defaultedgetype,attr"`
	Attributes      []gexfAttributes `xml:"attributes"`
	Nodes           []gexfNode       `xml:"nodes>node"`
	Edges           []gexfEdge       `xml:"edges>edge"`
}

type gexfAttributes struct {
	Class      string          `xml:"class,attr"`
	Attributes []gexfAttribute `xml:"attribute"`
}

type gexfAttribute struct {
	ID      string  `xml:"id,attr"`
	Title   string  `xml:"title,attr"`
	Type    string  `xml:"type,attr"`
	Default *string `xml:"default"`
}

type gexfNode struct {
	ID     string         `xml:"id,attr"`
	Label  string         `xml:"label,attr"`
	Values []gexfAttValue `xml:"attvalues>attvalue"`
}

type gexfAttValue struct {
	For   string `xml:"for,attr"`
	Value string `xml:"value,attr"`
}

type gexfEdge struct {
	ID     string `xml:"id,attr"`
	Source string `xml:"source,attr"`
	Target string `xml:"target,attr"`
}

// GEXFCodec — GEXF XML. Только чтение.
type GEXFCodec struct{}

// NewGEXFCodec создаёт формат GEXF.
func NewGEXFCodec() *GEXFCodec {
	return &GEXFCodec{}
}

// Name возвращает имя формата.
func (c *GEXFCodec) Name() string { return "gexf" }

// Extensions возвращает расширения файлов. .gxf читается как GEXF.
func (c *GEXFCodec) Extensions() []string { return []string{"gexf", "gxf"} }

// Decode читает GEXF документ.
//
// Атрибуты класса node приводятся к объявленному типу и хранятся под
// title. Непустой label узла сохраняется в атрибуте label.
func (c *GEXFCodec) Decode(r io.Reader) (*graph.Graph, error) {
	var doc gexfDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, decodeError(c.Name(), err)
	}

	declared := make(map[string]gexfAttribute)
	order := make([]string, 0)
	for _, block := range doc.Graph.Attributes {
		if block.Class != "" && block.Class != "node" {
			continue
		}
		for _, a := range block.Attributes {
			declared[a.ID] = a
			order = append(order, a.ID)
		}
	}

	g := graph.New()

	for _, n := range doc.Graph.Nodes {
		attrs := make(map[string]any, len(n.Values)+1)
		if n.Label != "" {
			attrs["label"] = n.Label
		}

		// Значения по умолчанию
		for _, id := range order {
			a := declared[id]
			if a.Default == nil {
				continue
			}
			v, err := parseTyped(a.Type, *a.Default)
			if err != nil {
				return nil, decodeError(c.Name(), fmt.Errorf("attribute %s default: %w", a.ID, err))
			}
			attrs[gexfAttrName(a)] = v
		}

		for _, av := range n.Values {
			a, ok := declared[av.For]
			if !ok {
				attrs[av.For] = av.Value
				continue
			}
			v, err := parseTyped(a.Type, av.Value)
			if err != nil {
				return nil, decodeError(c.Name(), fmt.Errorf("node %s, attribute %s: %w", n.ID, a.ID, err))
			}
			attrs[gexfAttrName(a)] = v
		}

		g.AddNode(n.ID, attrs)
	}

	for _, e := range doc.Graph.Edges {
		g.AddEdge(e.Source, e.Target)
	}

	return g, nil
}

func gexfAttrName(a gexfAttribute) string {
	if a.Title != "" {
		return a.Title
	}
	return a.ID
}
