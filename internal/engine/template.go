package engine

import (
	"bytes"
	"fmt"
	"maps"
	"path"
	"strings"
	"text/template"
)

// ArgContext — контекст для рендеринга строки аргументов задачи.
//
// Используется в Go templates внутри exec_args:
//   - {{ .Vars.butler }}  — переменные запуска (--var key=value)
//   - {{ .Node.exec_name }} — атрибуты узла-задачи
//   - {{ .ID }}            — ID узла-задачи
//   - {{ .Env.HOME }}      — переменные окружения из конфигурации
type ArgContext struct {
	// ID — идентификатор узла-задачи.
	ID string `json:"id"`

	// Vars — переменные запуска генерации.
	Vars map[string]string `json:"vars"`

	// Node — атрибуты узла-задачи.
	Node map[string]any `json:"node"`

	// Env — переменные окружения.
	Env map[string]string `json:"env"`
}

// NewArgContext создаёт контекст с переменными запуска.
func NewArgContext(vars map[string]string) *ArgContext {
	c := &ArgContext{
		Vars: make(map[string]string, len(vars)),
		Node: make(map[string]any),
		Env:  make(map[string]string),
	}
	maps.Copy(c.Vars, vars)
	return c
}

// ForNode возвращает копию контекста для конкретного узла-задачи.
func (c *ArgContext) ForNode(id string, attrs map[string]any) *ArgContext {
	return &ArgContext{
		ID:   id,
		Vars: c.Vars,
		Node: attrs,
		Env:  c.Env,
	}
}

// SetEnv устанавливает переменную окружения.
func (c *ArgContext) SetEnv(key, value string) {
	c.Env[key] = value
}

// templateFuncs — дополнительные функции для шаблонов аргументов.
var templateFuncs = template.FuncMap{
	// default — возвращает значение по умолчанию, если второй аргумент пустой
	"default": func(def, val any) any {
		if val == nil {
			return def
		}
		if s, ok := val.(string); ok && s == "" {
			return def
		}
		return val
	},

	// join — объединяет слайс строк
	"join": func(sep string, items []string) string {
		return strings.Join(items, sep)
	},

	// split — разбивает строку на слайс
	"split": func(sep, s string) []string {
		return strings.Split(s, sep)
	},

	// base — последний элемент пути
	"base": path.Base,

	"lower":   strings.ToLower,
	"upper":   strings.ToUpper,
	"trim":    strings.TrimSpace,
	"replace": strings.ReplaceAll,
}

// Render рендерит строку аргументов с контекстом.
//
// Строка без "{{" возвращается как есть: обычные exec_args не
// проходят через text/template.
func Render(tmpl string, ctx *ArgContext) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	t, err := template.New("exec_args").Funcs(templateFuncs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateParse, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	return buf.String(), nil
}
