package rules

import (
	"path"
	"strings"
)

// Category classifies what a rule is about.
type Category string

const (
	CategoryFramework     Category = "framework"
	CategoryLanguage      Category = "language"
	CategoryTesting       Category = "testing"
	CategoryBuild         Category = "build"
	CategoryTooling       Category = "tooling"
	CategoryDocumentation Category = "documentation"
)

var categoryPriority = map[Category]int{
	CategoryFramework:     10,
	CategoryLanguage:      9,
	CategoryTesting:       8,
	CategoryBuild:         7,
	CategoryTooling:       6,
	CategoryDocumentation: 5,
}

// Priority ranks categories for tie-breaking; unknown categories rank 0.
func (c Category) Priority() int { return categoryPriority[c] }

// Valid reports whether c is a known category.
func (c Category) Valid() bool { return c.Priority() > 0 }

var filenameCategories = []struct {
	cat      Category
	keywords []string
}{
	{CategoryTesting, []string{"test", "spec", "e2e"}},
	{CategoryBuild, []string{"build", "ci", "deploy", "release", "docker"}},
	{CategoryTooling, []string{"lint", "format", "style", "tooling", "editor"}},
	{CategoryLanguage, []string{"typescript", "javascript", "python", "rust", "golang", "php", "language"}},
}

// CategoryFromFilename infers a category from a rule file's name: test
// files map to testing, build/ci to build, lint/format to tooling, a name
// containing one of frameworks to framework, anything else to documentation.
func CategoryFromFilename(name string, frameworks ...string) Category {
	base := strings.ToLower(path.Base(name))
	base = strings.TrimSuffix(base, path.Ext(base))
	words := strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == ' '
	})

	for _, fc := range filenameCategories {
		for _, w := range words {
			for _, k := range fc.keywords {
				if w == k || (len(k) > 3 && strings.HasPrefix(w, k)) {
					return fc.cat
				}
			}
		}
	}
	for _, f := range frameworks {
		f = strings.ToLower(f)
		if f == "" {
			continue
		}
		for _, w := range words {
			if w == f {
				return CategoryFramework
			}
		}
	}
	return CategoryDocumentation
}
