package graphio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shaiso/daxgen/internal/graph"
)

// parseTyped переводит строковое значение атрибута XML-формата
// (GraphML, GEXF) в значение Go по объявленному типу.
func parseTyped(typ, raw string) (any, error) {
	switch strings.ToLower(typ) {
	case "boolean":
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid boolean %q", raw)
		}
		return b, nil
	case "int", "integer", "long", "short", "byte":
		i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", raw)
		}
		return i, nil
	case "float", "double":
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", raw)
		}
		return f, nil
	case "liststring":
		items := strings.FieldsFunc(strings.Trim(raw, "[]"), func(r rune) bool {
			return r == '|' || r == ','
		})
		out := make([]any, 0, len(items))
		for _, it := range items {
			if it = strings.Trim(strings.TrimSpace(it), `'"`); it != "" {
				out = append(out, it)
			}
		}
		return out, nil
	default:
		return raw, nil
	}
}

// typeOf возвращает GraphML-тип для значения атрибута.
func typeOf(v any) string {
	switch v.(type) {
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "long"
	case float32, float64:
		return "double"
	default:
		return "string"
	}
}

// formatTyped записывает значение атрибута строкой. Списки пишутся через
// запятую, как их читает graph.Node.ListAttr.
func formatTyped(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []string:
		return strings.Join(val, ",")
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(val)
	}
}

// attrNames собирает имена атрибутов узлов в порядке первого появления.
func attrNames(g *graph.Graph) ([]string, map[string]string) {
	names := make([]string, 0)
	types := make(map[string]string)

	for _, n := range g.Nodes() {
		// map не упорядочен: сортируем ключи узла для стабильного вывода
		keys := sortedKeys(n.Attrs)
		for _, k := range keys {
			t := typeOf(n.Attrs[k])
			prev, seen := types[k]
			switch {
			case !seen:
				names = append(names, k)
				types[k] = t
			case prev != t:
				types[k] = "string"
			}
		}
	}
	return names, types
}
