package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-formbind/pkg/config"
	"github.com/goliatone/go-formbind/pkg/directive"
	"github.com/goliatone/go-formbind/pkg/renderers/vanilla"
)

var errAborted = errors.New("formbind-lint: aborted")

// linter checks template files with one renderer per directory.
type linter struct {
	cfg       config.Config
	renderers map[string]*vanilla.Renderer
}

func newLinter(cfg config.Config) (*linter, error) {
	if _, err := directive.New(cfg.DirectiveOptions()...); err != nil {
		return nil, err
	}
	return &linter{cfg: cfg, renderers: make(map[string]*vanilla.Renderer)}, nil
}

func (l *linter) lint(path string) ([]directive.Diagnostic, error) {
	dir := filepath.Dir(path)
	renderer, ok := l.renderers[dir]
	if !ok {
		var err error
		renderer, err = vanilla.New(
			vanilla.WithTemplatesDir(dir),
			vanilla.WithDirectiveOptions(l.cfg.DirectiveOptions()...),
		)
		if err != nil {
			return nil, err
		}
		l.renderers[dir] = renderer
	}

	diags, err := renderer.Lint(filepath.Base(path))
	if err != nil {
		return nil, err
	}
	for i := range diags {
		diags[i].TemplatePath = path
	}
	return diags, nil
}

// collectTemplates expands directories into the .html files below them.
func collectTemplates(paths []string) ([]string, error) {
	var out []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if !entry.IsDir() && isTemplate(path) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(out)
	return out, nil
}

func isTemplate(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	default:
		return false
	}
}

// confirmer asks whether a file may be rewritten.
type confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

type surveyConfirmer struct{}

func (surveyConfirmer) Confirm(ctx context.Context, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var out bool
	prompt := &survey.Confirm{
		Message: message,
		Default: true,
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return false, errAborted
		}
		return false, err
	}
	return out, nil
}

type alwaysConfirm struct{}

func (alwaysConfirm) Confirm(context.Context, string) (bool, error) {
	return true, nil
}

// fix rewrites the mistaken attributes of path after confirmation and drops
// the cached template. It reports whether the file was rewritten.
func (l *linter) fix(ctx context.Context, path string, diags []directive.Diagnostic, confirm confirmer) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	fixed := rewriteAttributes(raw, diags)
	if string(fixed) == string(raw) {
		return false, nil
	}

	ok, err := confirm.Confirm(ctx, fmt.Sprintf("Rewrite %d attribute(s) in %s?", len(diags), path))
	if err != nil || !ok {
		return false, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, fixed, info.Mode().Perm()); err != nil {
		return false, err
	}
	if renderer, ok := l.renderers[filepath.Dir(path)]; ok {
		renderer.Invalidate()
	}
	return true, nil
}

// rewriteAttributes renames each mistaken attribute to its suggestion where
// it appears as an attribute name. Matching ignores case because the parser
// lowercases attribute names.
func rewriteAttributes(raw []byte, diags []directive.Diagnostic) []byte {
	seen := make(map[string]struct{}, len(diags))
	out := raw
	for _, d := range diags {
		key := strings.ToLower(d.Attribute)
		if _, done := seen[key]; done {
			continue
		}
		seen[key] = struct{}{}
		pattern := regexp.MustCompile(`(?i)(\s)` + regexp.QuoteMeta(d.Attribute) + `(\s*=)`)
		out = pattern.ReplaceAll(out, []byte("${1}"+d.Suggestion+"${2}"))
	}
	return out
}
