package project_test

import (
	"os"
	"path/filepath"
	"testing"

	"quillc/ast"
	"quillc/project"
)

func writeProjectFile(t *testing.T, dir, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "quill-mod.toml"), []byte(contents), 0o644); err != nil {
		t.Fatalf("writing quill-mod.toml: %v", err)
	}
}

func TestLoadBasicProject(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, `
[project]
name = "demo"
quill-version = "0.1.0"
source-roots = ["src"]
workers = 4
caching = false
default-strictness = "true"

[project.strictness]
"legacy/*" = "ignore"
`)

	p, err := project.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if p.Name != "demo" {
		t.Errorf("Name = %q, want demo", p.Name)
	}
	if p.Workers != 4 {
		t.Errorf("Workers = %d, want 4", p.Workers)
	}
	if p.DefaultStrictness != ast.True {
		t.Errorf("DefaultStrictness = %v, want True", p.DefaultStrictness)
	}
	if got := p.StrictnessFor("legacy/foo.ql"); got != ast.Ignore {
		t.Errorf("StrictnessFor(legacy/foo.ql) = %v, want Ignore", got)
	}
	if got := p.StrictnessFor("src/foo.ql"); got != ast.True {
		t.Errorf("StrictnessFor(src/foo.ql) = %v, want True (project default)", got)
	}
}

func TestLoadRejectsInvalidName(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, `
[project]
name = "123-not-an-identifier"
`)

	if _, err := project.Load(dir); err == nil {
		t.Errorf("expected an error for an invalid project name")
	}
}

func TestLoadRejectsCachingWithoutDirectory(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, `
[project]
name = "demo"
caching = true
`)

	if _, err := project.Load(dir); err == nil {
		t.Errorf("expected an error when caching is enabled with no cache-directory")
	}
}

func TestPermitsOverloads(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, `
[project]
name = "demo"
permit-overloads = ["vendor/**"]
`)

	p, err := project.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !p.PermitsOverloads("vendor/foo.ql") {
		t.Errorf("expected vendor/foo.ql to permit overloads")
	}
	if p.PermitsOverloads("src/foo.ql") {
		t.Errorf("expected src/foo.ql to not permit overloads")
	}
}

func TestIsValidIdentifier(t *testing.T) {
	cases := map[string]bool{
		"demo":       true,
		"_demo":      true,
		"demo2":      true,
		"2demo":      false,
		"":           false,
		"has-dashes": false,
	}
	for in, want := range cases {
		if got := project.IsValidIdentifier(in); got != want {
			t.Errorf("IsValidIdentifier(%q) = %v, want %v", in, got, want)
		}
	}
}
