package routepath

import "testing"

func TestMatchGroupName(t *testing.T) {
	tests := []struct {
		fragment string
		want     string
		ok       bool
	}{
		{"(tabs)", "tabs", true},
		{"(auth)", "auth", true},
		{"(a)(b)", "a)(b", true},
		{"tabs", "", false},
		{"(tabs", "", false},
		{"tabs)", "", false},
		{"()", "", false},
		{"(a/b)", "", false},
		{"x(tabs)", "", false},
	}

	for _, tt := range tests {
		got, ok := MatchGroupName(tt.fragment)
		if ok != tt.ok || got != tt.want {
			t.Errorf("MatchGroupName(%q) = (%q, %v), want (%q, %v)", tt.fragment, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		segment string
		want    string
	}{
		{"", ""},
		{"home", "home"},
		{"blog/post", "blog/post"},
		{"(tabs)", ""},
		{"(tabs)/home", "home"},
		{"blog/(admin)/new", "blog/new"},
		{"(a)/(b)/index.html", "index.html"},
		{"(tabs)/index.html", "index.html"},
		{"/(tabs)/home/", "home"},
		{"[id]", "[id]"},
		{"(x", "(x"},
	}

	for _, tt := range tests {
		if got := SanitizeName(tt.segment); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.segment, got, tt.want)
		}
	}
}

func TestSanitizeNameWithoutGroupsIsIdentity(t *testing.T) {
	for _, s := range []string{"", "about", "blog/post", "docs/[...slug]", "a/b/c/d.html", ":id"} {
		if got := SanitizeName(s); got != s {
			t.Errorf("SanitizeName(%q) = %q, want unchanged", s, got)
		}
	}
}

func TestSanitizeNameSingleGroupIsEmpty(t *testing.T) {
	for _, s := range []string{"(tabs)", "(auth)", "(very long group)", "(1)"} {
		if got := SanitizeName(s); got != "" {
			t.Errorf("SanitizeName(%q) = %q, want empty", s, got)
		}
	}
}

func TestSanitizeNameIdempotent(t *testing.T) {
	inputs := []string{
		"", "(tabs)", "(tabs)/home", "blog/(admin)/new", "//a//(b)//c//",
		"((nested))/x", "(a)(b)/c", "plain/path.html",
	}
	for _, s := range inputs {
		once := SanitizeName(s)
		if twice := SanitizeName(once); twice != once {
			t.Errorf("SanitizeName not idempotent for %q: %q then %q", s, once, twice)
		}
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		parts []string
		want  string
	}{
		{nil, ""},
		{[]string{"", ""}, ""},
		{[]string{"", "about"}, "about"},
		{[]string{"blog", ""}, "blog"},
		{[]string{"blog", "post.html"}, "blog/post.html"},
		{[]string{"a", "", "b"}, "a/b"},
	}

	for _, tt := range tests {
		if got := Join(tt.parts...); got != tt.want {
			t.Errorf("Join(%q) = %q, want %q", tt.parts, got, tt.want)
		}
	}
}
