package io

import (
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/stackrules/pkg/rules"
)

// WriteMarkdown renders rs as a Markdown document, one section per rule in
// document order.
func WriteMarkdown(rs RuleSet, w io.Writer) error {
	var b strings.Builder
	b.WriteString("# Rules\n\n")
	fmt.Fprintf(&b, "%d rules from %d of %d dependencies", len(rs.Rules), rs.Stats.Successful, rs.Stats.Processed)
	if !rs.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, ", generated %s", rs.GeneratedAt.Format("2006-01-02 15:04"))
	}
	b.WriteString(".\n")

	for _, r := range rs.Rules {
		b.WriteString("\n---\n\n")
		writeRule(&b, r)
	}

	if len(rs.Failures) > 0 {
		b.WriteString("\n---\n\n## Failed dependencies\n\n")
		for _, f := range rs.Failures {
			fmt.Fprintf(&b, "- `%s` (%s): %s\n", f.Dependency, f.Registry, f.Error)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeRule(b *strings.Builder, r rules.Rule) {
	fmt.Fprintf(b, "## %s\n\n", r.Name)
	fmt.Fprintf(b, "*%s · %s · confidence %.2f*", r.Source, r.Category, r.Confidence)
	if r.PackageName != "" {
		fmt.Fprintf(b, " · `%s`", pkgRef(r))
	}
	b.WriteString("\n\n")
	if r.Description != "" {
		fmt.Fprintf(b, "> %s\n\n", r.Description)
	}
	b.WriteString(strings.TrimSpace(r.Content.Markdown))
	b.WriteString("\n")
	if len(r.Targeting.Files) > 0 {
		fmt.Fprintf(b, "\nApplies to: `%s`\n", strings.Join(r.Targeting.Files, "`, `"))
	}
}

func pkgRef(r rules.Rule) string {
	if r.PackageVersion == "" {
		return r.PackageName
	}
	return r.PackageName + "@" + r.PackageVersion
}
