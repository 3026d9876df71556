// Package project loads a project's quill-mod.toml, the resolver's only
// configuration surface: source roots, per-path strictness, whether
// overloaded signatures are permitted, and the worker count P1's parallel
// first walk should use. It plays the role mods/load.go played in the
// teacher repo, stripped of everything specific to linking a build output
// (profiles, target OS/arch, static/dynamic libraries) since this module
// never gets that far.
package project

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"

	"quillc/ast"
	"quillc/common"
	"quillc/diagnostics"
)

// tomlProjectFile is the on-disk shape of quill-mod.toml.
type tomlProjectFile struct {
	Project *tomlProject `toml:"project"`
}

type tomlProject struct {
	Name              string            `toml:"name"`
	QuillVersion      string            `toml:"quill-version"`
	SourceRoots       []string          `toml:"source-roots,omitempty"`
	Workers           int               `toml:"workers,omitempty"`
	ShouldCache       bool              `toml:"caching"`
	CacheDirectory    string            `toml:"cache-directory,omitempty"`
	DefaultStrictness string            `toml:"default-strictness,omitempty"`
	PermitOverloads   []string          `toml:"permit-overloads,omitempty"`
	Strictness        map[string]string `toml:"strictness,omitempty"`
}

// Project is the resolved, validated form of a quill-mod.toml.
type Project struct {
	Name                string
	Root                string
	SourceRoots         []string
	Workers             int
	ShouldCache         bool
	CacheDirectory      string
	DefaultStrictness   ast.Strictness
	StrictnessOverrides map[string]ast.Strictness // glob pattern -> sigil
	PermitOverloads     []string                  // glob patterns
}

// Load reads and validates the quill-mod.toml found at path (the project's
// root directory).
func Load(path string) (*Project, error) {
	f, err := os.Open(filepath.Join(path, common.ProjectFileName))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}

	tpf := &tomlProjectFile{}
	if err := toml.Unmarshal(buf, tpf); err != nil {
		return nil, err
	}
	if tpf.Project == nil {
		return nil, errors.New("quill-mod.toml is missing the [project] table")
	}
	tp := tpf.Project

	if err := validate(tp); err != nil {
		return nil, err
	}

	if tp.QuillVersion != "" && tp.QuillVersion != common.QuillVersion {
		diagnostics.PrintWarningMessage("project", fmt.Sprintf(
			"project `%s` targets quill v%s, which does not match the running v%s",
			tp.Name, tp.QuillVersion, common.QuillVersion,
		))
	}

	defaultStrictness, err := parseStrictness(tp.DefaultStrictness, ast.False)
	if err != nil {
		return nil, fmt.Errorf("default-strictness: %w", err)
	}

	overrides := make(map[string]ast.Strictness, len(tp.Strictness))
	for pattern, sigil := range tp.Strictness {
		s, err := parseStrictness(sigil, ast.False)
		if err != nil {
			return nil, fmt.Errorf("strictness override %q: %w", pattern, err)
		}
		overrides[pattern] = s
	}

	workers := tp.Workers
	if workers <= 0 {
		workers = 1
	}

	sourceRoots := tp.SourceRoots
	if len(sourceRoots) == 0 {
		sourceRoots = []string{"."}
	}

	return &Project{
		Name:                tp.Name,
		Root:                path,
		SourceRoots:         sourceRoots,
		Workers:             workers,
		ShouldCache:         tp.ShouldCache,
		CacheDirectory:      tp.CacheDirectory,
		DefaultStrictness:   defaultStrictness,
		StrictnessOverrides: overrides,
		PermitOverloads:     tp.PermitOverloads,
	}, nil
}

func validate(tp *tomlProject) error {
	if tp.Name == "" {
		return errors.New("quill-mod.toml is missing project.name")
	}
	if !IsValidIdentifier(tp.Name) {
		return fmt.Errorf("project name %q is not a valid identifier", tp.Name)
	}
	if tp.ShouldCache && tp.CacheDirectory == "" {
		return fmt.Errorf("project `%s` enables caching but sets no cache-directory", tp.Name)
	}
	return nil
}

func parseStrictness(sigil string, fallback ast.Strictness) (ast.Strictness, error) {
	switch sigil {
	case "":
		return fallback, nil
	case "ignore":
		return ast.Ignore, nil
	case "false":
		return ast.False, nil
	case "true":
		return ast.True, nil
	case "strict":
		return ast.Strict, nil
	case "strict-strong":
		return ast.StrictStrong, nil
	default:
		return ast.False, fmt.Errorf("unrecognized strictness sigil %q", sigil)
	}
}

// StrictnessFor resolves the sigil that applies to a file at relPath
// (project-root-relative): the most specific matching override, falling
// back to the project default.
func (p *Project) StrictnessFor(relPath string) ast.Strictness {
	best := p.DefaultStrictness
	bestLen := -1
	for pattern, s := range p.StrictnessOverrides {
		if matched, _ := filepath.Match(pattern, relPath); matched && len(pattern) > bestLen {
			best, bestLen = s, len(pattern)
		}
	}
	return best
}

// PermitsOverloads reports whether relPath falls under one of the
// project's permit-overloads glob patterns.
func (p *Project) PermitsOverloads(relPath string) bool {
	for _, pattern := range p.PermitOverloads {
		if matched, _ := filepath.Match(pattern, relPath); matched {
			return true
		}
	}
	return false
}

// IsValidIdentifier reports whether idstr could name a module, package, or
// project (same rule the teacher's module loader applies to module names).
func IsValidIdentifier(idstr string) bool {
	if idstr == "" {
		return false
	}
	if !isIdentStart(idstr[0]) {
		return false
	}
	for i := 1; i < len(idstr); i++ {
		if !isIdentCont(idstr[i]) {
			return false
		}
	}
	return true
}

func isIdentStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || ('0' <= c && c <= '9')
}

// strictnessSigilOf scans source text's leading comment lines for a
// `# typed: <sigil>` declaration (spec §9's per-file override of the
// project default). Nothing in this repository calls it; there is no
// loader that walks source roots.
func strictnessSigilOf(source string, fallback ast.Strictness) ast.Strictness {
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "#") {
			break
		}
		if rest := strings.TrimPrefix(line, "# typed:"); rest != line {
			if s, err := parseStrictness(strings.TrimSpace(rest), fallback); err == nil {
				return s
			}
		}
	}
	return fallback
}
