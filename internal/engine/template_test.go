package engine

import (
	"errors"
	"testing"
)

func TestNewArgContext(t *testing.T) {
	// С nil vars
	ctx := NewArgContext(nil)
	if ctx.Vars == nil || ctx.Env == nil || ctx.Node == nil {
		t.Fatal("maps should not be nil")
	}

	// Vars копируются
	vars := map[string]string{"butler": "/repo"}
	ctx = NewArgContext(vars)
	vars["butler"] = "changed"
	if ctx.Vars["butler"] != "/repo" {
		t.Error("Vars should be copied")
	}
}

func TestRender(t *testing.T) {
	ctx := NewArgContext(map[string]string{"butler": "/repo", "empty": ""})
	ctx.SetEnv("HOME", "/home/u")
	node := ctx.ForNode("T1", map[string]any{"exec_name": "calexp", "visit": 42})

	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{"plain string", "-i a.fits -o b.fits", "-i a.fits -o b.fits"},
		{"braces without template", "{butler} run", "{butler} run"},
		{"var", "-b {{ .Vars.butler }}", "-b /repo"},
		{"node attr", "{{ .Node.exec_name }} {{ .Node.visit }}", "calexp 42"},
		{"id", "--id {{ .ID }}", "--id T1"},
		{"env", "{{ .Env.HOME }}/out", "/home/u/out"},
		{"default", `{{ default "x" .Vars.empty }}`, "x"},
		{"base", `{{ base "/a/b/c.fits" }}`, "c.fits"},
		{"upper", `{{ upper "abc" }}`, "ABC"},
		{"join split", `{{ join "," (split ":" "a:b") }}`, "a,b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.tmpl, node)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRender_Errors(t *testing.T) {
	ctx := NewArgContext(nil).ForNode("T1", map[string]any{})

	_, err := Render("{{ .Vars.x ", ctx)
	if !errors.Is(err, ErrTemplateParse) {
		t.Errorf("expected ErrTemplateParse, got %v", err)
	}

	_, err = Render("{{ .Vars.missing }}", ctx)
	if !errors.Is(err, ErrTemplateRender) {
		t.Errorf("expected ErrTemplateRender, got %v", err)
	}
}
