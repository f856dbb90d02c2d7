package manifest

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/vango-dev/vango-export/internal/errors"
)

func TestParse(t *testing.T) {
	data := []byte(`{
  "initialRouteName": "index",
  "screens": {
    "index": "",
    "about": "about",
    "(tabs)": {
      "path": "(tabs)",
      "screens": {
        "home": "home",
        "settings": {"path": "settings", "screens": {}}
      }
    },
    "empty": {"path": "nothing"}
  }
}`)

	m, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if m.InitialRouteName != "index" {
		t.Errorf("InitialRouteName = %q, want %q", m.InitialRouteName, "index")
	}

	if got, want := m.Screens.Names(), []string{"(tabs)", "about", "empty", "index"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	if leaf, ok := m.Screens["index"].(*Leaf); !ok || leaf.Segment != "" || leaf.Name != "index" {
		t.Errorf("index = %#v, want leaf with empty segment", m.Screens["index"])
	}

	tabs, ok := m.Screens["(tabs)"].(*Branch)
	if !ok {
		t.Fatalf("(tabs) = %#v, want branch", m.Screens["(tabs)"])
	}
	if tabs.Path != "(tabs)" || len(tabs.Screens) != 2 {
		t.Errorf("(tabs) = %+v", tabs)
	}

	// A branch with empty screens degenerates to a leaf using its path.
	if leaf, ok := tabs.Screens["settings"].(*Leaf); !ok || leaf.Segment != "settings" {
		t.Errorf("settings = %#v, want leaf", tabs.Screens["settings"])
	}
	if leaf, ok := m.Screens["empty"].(*Leaf); !ok || leaf.Segment != "nothing" {
		t.Errorf("empty = %#v, want leaf with segment %q", m.Screens["empty"], "nothing")
	}

	if got := m.Count(); got != 5 {
		t.Errorf("Count() = %d, want 5", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{"screens":`},
		{"number screen", `{"screens": {"a": 1}}`},
		{"array screen", `{"screens": {"a": []}}`},
		{"null screen", `{"screens": {"a": null}}`},
		{"nested bad screen", `{"screens": {"a": {"path": "a", "screens": {"b": true}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.HasCode(err, "E201") {
				t.Errorf("error = %v, want E201", err)
			}
		})
	}
}

func TestParseNestedErrorPathname(t *testing.T) {
	_, err := Parse([]byte(`{"screens": {"blog": {"path": "blog", "screens": {"post": 3}}}}`))
	ve := errors.FromError(err, "E201")
	if ve.Pathname != "blog/post" {
		t.Errorf("Pathname = %q, want %q", ve.Pathname, "blog/post")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	m := &Manifest{
		Screens: Screens{
			"index": &Leaf{Name: "index", Segment: ""},
			"blog": &Branch{Name: "blog", Path: "blog", Screens: Screens{
				"[id]": &Leaf{Name: "[id]", Segment: ":id"},
			}},
		},
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Errorf("round trip mismatch:\n got %#v\nwant %#v", got, m)
	}
}

func TestScreensNamesEmpty(t *testing.T) {
	var s Screens
	if names := s.Names(); len(names) != 0 {
		t.Errorf("Names() = %v, want empty", names)
	}
}
