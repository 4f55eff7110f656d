package graph

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Атрибуты приходят из разных форматов: JSON даёт float64, msgpack —
// int8..uint64, GraphML — типизированные значения или строки. Функции
// ниже приводят их к нужному типу.

// StringAttr возвращает строковый атрибут. ok=false, если атрибута нет.
func (n *Node) StringAttr(key string) (string, bool) {
	v, exists := n.Attrs[key]
	if !exists || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		return fmt.Sprint(v), true
	}
}

// HasAttr проверяет наличие атрибута.
func (n *Node) HasAttr(key string) bool {
	_, exists := n.Attrs[key]
	return exists
}

// BoolAttr возвращает булев атрибут. Отсутствующий атрибут — false.
func (n *Node) BoolAttr(key string) bool {
	v, exists := n.Attrs[key]
	if !exists || v == nil {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return err == nil && parsed
	default:
		i, ok := toInt(v)
		return ok && i != 0
	}
}

// IntAttr возвращает целочисленный атрибут. ok=false, если атрибута нет или
// он не приводится к целому.
func (n *Node) IntAttr(key string) (int, bool) {
	v, exists := n.Attrs[key]
	if !exists || v == nil {
		return 0, false
	}
	return toInt(v)
}

// ListAttr возвращает атрибут-список. Строка делится по запятым.
// Позиции сохраняются: пустой элемент остаётся пустой строкой, чтобы
// параллельные списки (pfn и sites) не сдвигались друг относительно друга.
func (n *Node) ListAttr(key string) ([]string, bool) {
	v, exists := n.Attrs[key]
	if !exists || v == nil {
		return nil, false
	}
	switch l := v.(type) {
	case string:
		return SplitList(l), true
	case []string:
		out := make([]string, len(l))
		for i, item := range l {
			out[i] = strings.TrimSpace(item)
		}
		return out, true
	case []any:
		out := make([]string, len(l))
		for i, item := range l {
			if item != nil {
				out[i] = strings.TrimSpace(fmt.Sprint(item))
			}
		}
		return out, true
	default:
		return []string{fmt.Sprint(v)}, true
	}
}

// SplitList делит строку по запятым и обрезает пробелы. Пустые элементы
// сохраняют свою позицию. Пустая строка даёт пустой список.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			f, ferr := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if ferr != nil {
				return 0, false
			}
			return floatToInt(f)
		}
		return i, true
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
