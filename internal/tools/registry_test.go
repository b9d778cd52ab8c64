package tools

import (
	"context"
	"errors"
	"testing"
)

func TestRegistry_UnknownTool(t *testing.T) {
	r := NewRegistry()
	RegisterDefaultTools(r)
	_, err := r.Build(context.Background(), "make_coffee", nil, &Session{})
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("err = %v", err)
	}
}

func TestRegistry_DefaultToolSet(t *testing.T) {
	r := NewRegistry()
	RegisterDefaultTools(r)

	want := map[string]bool{
		"chat_reply":       false,
		"create_chart":     false,
		"create_map":       false,
		"create_image":     false,
		"create_video":     false,
		"create_camera":    false,
		"analyze_document": false,
		"get_weather":      false,
	}
	decls := r.Declarations()
	if len(decls) != len(want) {
		t.Fatalf("declared %d tools, want %d", len(decls), len(want))
	}
	for _, d := range decls {
		seen, ok := want[d.Name]
		if !ok {
			t.Fatalf("unexpected tool %q", d.Name)
		}
		if seen {
			t.Fatalf("tool %q declared twice", d.Name)
		}
		want[d.Name] = true
		if d.Parameters == nil {
			t.Fatalf("tool %q has no parameter schema", d.Name)
		}
	}
}
