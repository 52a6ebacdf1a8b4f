package rules

import (
	"errors"
	"testing"

	fsderrors "github.com/matzehuels/fsdcheck/pkg/errors"
)

func TestExpand(t *testing.T) {
	groups := []string{"src/features/auth", "features", "auth"}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"no placeholders", "^src/shared", "^src/shared"},
		{"two groups", "^src/$1/$2", "^src/features/auth"},
		{"whole match", "$0/index", "src/features/auth/index"},
		{"escaped dollar", "^a$$1", "^a$1"},
		{"end anchor kept", "^src/$1$", "^src/features$"},
		{"trailing dollar", "x$", "x$"},
		{"group followed by pattern", "^src/$1/$2(/|$)", "^src/features/auth(/|$)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(groups, tt.template)
			if err != nil {
				t.Fatalf("Expand() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Expand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandQuotesGroups(t *testing.T) {
	got, err := Expand([]string{"x", "user.v2"}, "^src/$1")
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if got != `^src/user\.v2` {
		t.Errorf("Expand() = %q, want the dot escaped", got)
	}
}

func TestExpandMultiDigit(t *testing.T) {
	groups := make([]string, 11)
	groups[10] = "ten"
	got, err := Expand(groups, "$10")
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if got != "ten" {
		t.Errorf("Expand() = %q, want ten", got)
	}
}

func TestExpandOutOfRange(t *testing.T) {
	_, err := Expand([]string{"src/features", "features"}, "^src/$1/$2")
	if !errors.Is(err, ErrGroupOutOfRange) {
		t.Errorf("Expand() error = %v, want ErrGroupOutOfRange", err)
	}
}

func TestExpandIsPure(t *testing.T) {
	groups := []string{"a", "b"}
	first, _ := Expand(groups, "$1-$1")
	second, _ := Expand(groups, "$1-$1")
	if first != second || groups[1] != "b" {
		t.Error("Expand() should not depend on or modify state")
	}
}

func TestPlaceholders(t *testing.T) {
	tests := map[string]int{
		"^src/shared":    -1,
		"^src/$1":        1,
		"^src/$1/$2":     2,
		"$$3":            -1,
		"^a$":            -1,
		"$12 and $3":     12,
		"^src/$0/([^/])": 0,
	}
	for template, want := range tests {
		if got := placeholders(template); got != want {
			t.Errorf("placeholders(%q) = %d, want %d", template, got, want)
		}
	}
}

func TestCompilePattern(t *testing.T) {
	if _, err := compilePattern("r", "^src/(", false); !fsderrors.Is(err, fsderrors.ErrCodeConfigPattern) {
		t.Errorf("static invalid pattern error = %v, want %s", err, fsderrors.ErrCodeConfigPattern)
	}
	if _, err := compilePattern("r", "^src/$1/(", true); !fsderrors.Is(err, fsderrors.ErrCodeConfigPattern) {
		t.Errorf("templated invalid pattern error = %v, want %s", err, fsderrors.ErrCodeConfigPattern)
	}

	p, err := compilePattern("r", "^src/$1/", true)
	if err != nil {
		t.Fatalf("compilePattern() error = %v", err)
	}
	if !p.templated() {
		t.Fatal("pattern with placeholders should be templated")
	}
	a, err := p.resolve([]string{"src/pages", "pages"})
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	b, _ := p.resolve([]string{"src/pages/x", "pages"})
	if a != b {
		t.Error("equal expansions should share one compiled expression")
	}
	if !a.MatchString("src/pages/home") || a.MatchString("src/widgets/home") {
		t.Errorf("resolved pattern %q matches the wrong modules", a)
	}
}

func TestMatcherEmptyPathMatchesEverything(t *testing.T) {
	m, err := compileMatcher("r", Matcher{}, false)
	if err != nil {
		t.Fatalf("compileMatcher() error = %v", err)
	}
	groups, ok := m.submatch("anything/at/all.ts")
	if !ok || len(groups) != 1 || groups[0] != "anything/at/all.ts" {
		t.Errorf("submatch() = %v, %v; want whole path only", groups, ok)
	}
}

func TestMatcherAnchorsFromPath(t *testing.T) {
	m, err := compileMatcher("r", Matcher{Path: "shared|app"}, false)
	if err != nil {
		t.Fatalf("compileMatcher() error = %v", err)
	}
	tests := []struct {
		path string
		want bool
	}{
		{"shared/lib/x.ts", true},
		{"app/index.ts", true},
		{"src/features/shared-menu/a.ts", false},
		{"src/app/index.ts", false},
	}
	for _, tt := range tests {
		if _, ok := m.submatch(tt.path); ok != tt.want {
			t.Errorf("submatch(%q) = %v, want %v", tt.path, ok, tt.want)
		}
	}
}

func TestMatcherKeepsToPathUnanchored(t *testing.T) {
	m, err := compileMatcher("r", Matcher{Path: "app"}, true)
	if err != nil {
		t.Fatalf("compileMatcher() error = %v", err)
	}
	ok, err := m.match("src/app/index.ts", []string{"src/shared/x.ts"})
	if err != nil || !ok {
		t.Errorf("match() = %v, %v; want a search match", ok, err)
	}
}
