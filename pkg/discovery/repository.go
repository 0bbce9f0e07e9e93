package discovery

import (
	"context"
	"errors"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stackrules/pkg/deps"
	errs "github.com/matzehuels/stackrules/pkg/errors"
	"github.com/matzehuels/stackrules/pkg/integrations"
	"github.com/matzehuels/stackrules/pkg/rules"
)

// Rule files probed at the repository root (or package subpath), with the
// assistant each one configures.
var rootRuleFiles = []struct{ name, tool string }{
	{".cursorrules", "cursor"},
	{".windsurfrules", "windsurf"},
	{"CLAUDE.md", "claude"},
	{"AGENTS.md", "agents"},
}

// Directories whose rule files are all collected.
var ruleDirs = []struct{ parent, dir, tool string }{
	{".vibe", ".vibe", "vibe"},
	{".cursor", ".cursor/rules", "cursor"},
}

var ruleExts = map[string]bool{".md": true, ".mdc": true, ".txt": true}

// RepositoryStrategy scans a GitHub repository for assistant rule files:
// .vibe/ and .cursor/rules/ directories, root-level tool configs such as
// .cursorrules and CLAUDE.md, and .github/copilot-instructions.md. Each file
// becomes one repository rule.
type RepositoryStrategy struct {
	forge   Forge
	weights rules.Weights
}

// NewRepositoryStrategy creates the repository tier.
func NewRepositoryStrategy(forge Forge, w rules.Weights) *RepositoryStrategy {
	return &RepositoryStrategy{forge: forge, weights: w.WithDefaults()}
}

func (s *RepositoryStrategy) Tier() Tier { return TierRepository }

func (s *RepositoryStrategy) Discover(ctx context.Context, meta deps.PackageMetadata) TierResult {
	ref, ok := githubRepo(meta)
	if !ok {
		return skipped(TierRepository, errs.ErrCodeUnsupported, "%s has no GitHub repository", meta.Name)
	}

	bases := []string{""}
	if ref.Subpath != "" {
		bases = []string{ref.Subpath, ""}
	}

	seen := make(map[string]bool)
	var out []rules.Rule
	var firstErr error
	for _, base := range bases {
		files, err := s.candidates(ctx, ref, base)
		if err != nil {
			firstErr = cmpErr(firstErr, err)
			continue
		}
		for _, f := range files {
			if seen[f.path] {
				continue
			}
			seen[f.path] = true
			r, err := s.fetchRule(ctx, ref, f, meta)
			if err != nil {
				firstErr = cmpErr(firstErr, err)
				continue
			}
			if r != nil {
				out = append(out, *r)
			}
		}
	}
	if len(out) == 0 && firstErr != nil {
		return failed(TierRepository, firstErr)
	}
	return found(TierRepository, out)
}

type ruleFile struct{ path, tool string }

// candidates lists the rule files present under base. A missing base
// directory yields no candidates and no error.
func (s *RepositoryStrategy) candidates(ctx context.Context, ref integrations.RepoRef, base string) ([]ruleFile, error) {
	root, err := s.forge.ListDirectory(ctx, ref.Owner, ref.Name, base)
	if errors.Is(err, integrations.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(root))
	dirs := make(map[string]bool)
	for _, item := range root {
		if item.IsDir() {
			dirs[item.Name] = true
		} else {
			present[item.Name] = true
		}
	}

	var out []ruleFile
	for _, f := range rootRuleFiles {
		if present[f.name] {
			out = append(out, ruleFile{path.Join(base, f.name), f.tool})
		}
	}
	for _, d := range ruleDirs {
		if !dirs[d.parent] {
			continue
		}
		items, err := s.forge.ListDirectory(ctx, ref.Owner, ref.Name, path.Join(base, d.dir))
		if errors.Is(err, integrations.ErrNotFound) {
			continue
		}
		if err != nil {
			return out, err
		}
		for _, item := range items {
			if !item.IsDir() && ruleExts[strings.ToLower(path.Ext(item.Name))] {
				out = append(out, ruleFile{path.Join(base, d.dir, item.Name), d.tool})
			}
		}
	}
	if dirs[".github"] {
		out = append(out, ruleFile{path.Join(base, ".github/copilot-instructions.md"), "copilot"})
	}
	return out, nil
}

// fetchRule reads one rule file. Missing and blank files yield no rule.
func (s *RepositoryStrategy) fetchRule(ctx context.Context, ref integrations.RepoRef, f ruleFile, meta deps.PackageMetadata) (*rules.Rule, error) {
	content, err := s.forge.FetchFile(ctx, ref.Owner, ref.Name, f.path)
	if errors.Is(err, integrations.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	fm, body := splitFrontmatter(content)
	if strings.TrimSpace(body) == "" {
		return nil, nil
	}

	var frameworks []string
	if meta.InferredFramework != "" {
		frameworks = append(frameworks, meta.InferredFramework)
	}
	cat := rules.CategoryFromFilename(f.path, frameworks...)

	r := rules.New(meta.Name+" "+f.path, rules.SourceRepository, cat, body, s.weights)
	r.Description = fm.Description
	if r.Description == "" {
		r.Description = f.path + " in " + ref.Owner + "/" + ref.Name
	}
	r.Content.Tags = []string{f.tool}
	r.Targeting = targeting(meta)
	r.Targeting.Files = fm.globs()
	if fm.AlwaysApply {
		r.Targeting.Contexts = []string{"always"}
	}
	return &r, nil
}

// frontmatter is the YAML header of Cursor .mdc rule files.
type frontmatter struct {
	Description string `yaml:"description"`
	Globs       any    `yaml:"globs"`
	AlwaysApply bool   `yaml:"alwaysApply"`
}

// globs accepts both the comma-separated string and the list form.
func (f frontmatter) globs() []string {
	var raw []string
	switch g := f.Globs.(type) {
	case string:
		raw = strings.Split(g, ",")
	case []any:
		for _, v := range g {
			if s, ok := v.(string); ok {
				raw = append(raw, s)
			}
		}
	}
	var out []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// splitFrontmatter separates a leading "---" YAML block from the body.
// Content without a valid block is returned whole.
func splitFrontmatter(content string) (frontmatter, string) {
	var fm frontmatter
	text := strings.TrimPrefix(content, "\ufeff")
	rest, ok := strings.CutPrefix(strings.ReplaceAll(text, "\r\n", "\n"), "---\n")
	if !ok {
		return fm, content
	}
	header, body, ok := strings.Cut(rest, "\n---")
	if !ok {
		return fm, content
	}
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return frontmatter{}, content
	}
	body = strings.TrimPrefix(body, "-") // tolerate "----"
	body = strings.TrimLeft(body, "\n")
	return fm, body
}

// githubRepo resolves the metadata repository (or a GitHub homepage) to a
// github.com reference.
func githubRepo(meta deps.PackageMetadata) (integrations.RepoRef, bool) {
	for _, u := range []string{meta.RepositoryURL(), meta.Homepage} {
		if ref, ok := integrations.ParseRepoURL(u); ok && ref.IsGitHub() {
			return ref, true
		}
	}
	return integrations.RepoRef{}, false
}

func cmpErr(first, err error) error {
	if first != nil {
		return first
	}
	return err
}
