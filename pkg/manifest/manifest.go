package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/vango-dev/vango-export/internal/errors"
)

// Node is a screen in the manifest tree: a *Leaf or a *Branch.
type Node interface {
	// NodeName returns the screen name the node is registered under.
	NodeName() string

	isNode()
}

// Leaf is a single routable screen.
type Leaf struct {
	Name    string
	Segment string
}

// Branch is a path prefix grouping child screens.
type Branch struct {
	Name    string
	Path    string
	Screens Screens
}

func (l *Leaf) NodeName() string   { return l.Name }
func (b *Branch) NodeName() string { return b.Name }

func (*Leaf) isNode()   {}
func (*Branch) isNode() {}

// Screens maps screen names to nodes.
type Screens map[string]Node

// Names returns the screen names in sorted order.
func (s Screens) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Manifest is the root of a route manifest.
type Manifest struct {
	// InitialRouteName is the screen shown first, if the router declares one.
	InitialRouteName string

	// Screens are the top-level screens.
	Screens Screens
}

// Count returns the number of leaves in the manifest.
func (m *Manifest) Count() int {
	return countLeaves(m.Screens)
}

func countLeaves(s Screens) int {
	n := 0
	for _, node := range s {
		switch v := node.(type) {
		case *Leaf:
			n++
		case *Branch:
			if len(v.Screens) == 0 {
				n++
				continue
			}
			n += countLeaves(v.Screens)
		}
	}
	return n
}

// Parse decodes a manifest from JSON.
func Parse(data []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, errors.FromError(err, "E201")
	}
	return m, nil
}

type rawManifest struct {
	InitialRouteName string                     `json:"initialRouteName,omitempty"`
	Screens          map[string]json.RawMessage `json:"screens"`
}

type rawBranch struct {
	Path    string                     `json:"path"`
	Screens map[string]json.RawMessage `json:"screens"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	var raw rawManifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.New("E201").WithDetail(err.Error()).Wrap(err)
	}
	screens, err := parseScreens(raw.Screens, "")
	if err != nil {
		return err
	}
	m.InitialRouteName = raw.InitialRouteName
	m.Screens = screens
	return nil
}

func parseScreens(raw map[string]json.RawMessage, parent string) (Screens, error) {
	screens := make(Screens, len(raw))
	for name, msg := range raw {
		node, err := parseNode(name, msg, parent)
		if err != nil {
			return nil, err
		}
		screens[name] = node
	}
	return screens, nil
}

func parseNode(name string, msg json.RawMessage, parent string) (Node, error) {
	where := name
	if parent != "" {
		where = parent + "/" + name
	}

	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) == 0 {
		return nil, errors.New("E201").
			WithPathname(where).
			WithDetail("screen has no value")
	}

	switch trimmed[0] {
	case '"':
		var segment string
		if err := json.Unmarshal(trimmed, &segment); err != nil {
			return nil, errors.New("E201").WithPathname(where).WithDetail(err.Error()).Wrap(err)
		}
		return &Leaf{Name: name, Segment: segment}, nil

	case '{':
		var rb rawBranch
		if err := json.Unmarshal(trimmed, &rb); err != nil {
			return nil, errors.New("E201").WithPathname(where).WithDetail(err.Error()).Wrap(err)
		}
		if len(rb.Screens) == 0 {
			return &Leaf{Name: name, Segment: rb.Path}, nil
		}
		children, err := parseScreens(rb.Screens, where)
		if err != nil {
			return nil, err
		}
		return &Branch{Name: name, Path: rb.Path, Screens: children}, nil
	}

	return nil, errors.New("E201").
		WithPathname(where).
		WithDetail(fmt.Sprintf("screen must be a string or an object, got %s", trimmed))
}

// MarshalJSON implements json.Marshaler. Leaves encode as strings and
// branches as {"path", "screens"} objects, so Parse(MarshalJSON(m)) is m.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	out := struct {
		InitialRouteName string         `json:"initialRouteName,omitempty"`
		Screens          map[string]any `json:"screens"`
	}{
		InitialRouteName: m.InitialRouteName,
		Screens:          encodeScreens(m.Screens),
	}
	return json.Marshal(out)
}

func encodeScreens(s Screens) map[string]any {
	out := make(map[string]any, len(s))
	for name, node := range s {
		switch v := node.(type) {
		case *Leaf:
			out[name] = v.Segment
		case *Branch:
			out[name] = map[string]any{
				"path":    v.Path,
				"screens": encodeScreens(v.Screens),
			}
		}
	}
	return out
}
