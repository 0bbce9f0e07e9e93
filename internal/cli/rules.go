package cli

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	rulesio "github.com/matzehuels/stackrules/pkg/io"
	"github.com/matzehuels/stackrules/pkg/rules"
)

// defaultWrap is the word-wrap width for rendered markdown.
const defaultWrap = 100

// ruleFilter narrows a saved rule set before display.
type ruleFilter struct {
	pkg           string
	source        string
	minConfidence float64
}

func (f *ruleFilter) register(cmd *cobra.Command) {
	fs := cmd.PersistentFlags()
	fs.StringVarP(&f.pkg, "package", "p", "", "only rules for this package")
	fs.StringVarP(&f.source, "source", "s", "", "only rules from this source: direct, repository, inference, registry")
	fs.Float64Var(&f.minConfidence, "min-confidence", 0, "drop rules below this confidence (0-1)")
}

// load reads the rule set at path and applies the filter.
func (f *ruleFilter) load(path string) (rulesio.RuleSet, error) {
	if f.source != "" && !rules.Source(f.source).Valid() {
		return rulesio.RuleSet{}, fmt.Errorf("unknown source %q (must be one of: direct, repository, inference, registry)", f.source)
	}
	rs, err := rulesio.ImportJSON(path)
	if err != nil {
		return rulesio.RuleSet{}, fmt.Errorf("load rules %s: %w", path, err)
	}

	kept := make([]rules.Rule, 0, len(rs.Rules))
	for _, r := range rules.FilterMinConfidence(rs.Rules, f.minConfidence) {
		if f.pkg != "" && !strings.EqualFold(r.PackageName, f.pkg) {
			continue
		}
		if f.source != "" && string(r.Source) != f.source {
			continue
		}
		kept = append(kept, r)
	}
	rs.Rules = kept
	return rs, nil
}

// rulesCommand creates the rules command for inspecting saved rule sets.
func (c *CLI) rulesCommand() *cobra.Command {
	var filter ruleFilter

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect a rule set written by discover",
	}
	filter.register(cmd)

	cmd.AddCommand(c.rulesShowCommand(&filter))
	cmd.AddCommand(c.rulesBrowseCommand(&filter))

	return cmd
}

// rulesShowCommand creates the "rules show" subcommand.
func (c *CLI) rulesShowCommand(filter *ruleFilter) *cobra.Command {
	var (
		style string
		raw   bool
	)

	cmd := &cobra.Command{
		Use:               "show [rules.json]",
		Short:             "Print a rule set as formatted markdown",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeRuleSets,
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := filter.load(ruleSetPath(args))
			if err != nil {
				return err
			}

			var md bytes.Buffer
			if err := rulesio.WriteMarkdown(rs, &md); err != nil {
				return err
			}
			if raw {
				_, err := os.Stdout.Write(md.Bytes())
				return err
			}

			out, err := renderMarkdown(md.String(), style)
			if err != nil {
				return fmt.Errorf("render markdown: %w", err)
			}
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&style, "style", "auto", "glamour style: auto, dark, light, notty")
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without formatting")

	return cmd
}

// rulesBrowseCommand creates the "rules browse" subcommand.
func (c *CLI) rulesBrowseCommand(filter *ruleFilter) *cobra.Command {
	return &cobra.Command{
		Use:               "browse [rules.json]",
		Short:             "Browse a rule set interactively",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeRuleSets,
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := filter.load(ruleSetPath(args))
			if err != nil {
				return err
			}
			if len(rs.Rules) == 0 {
				printInfo("No rules to browse")
				return nil
			}

			render := func(md string) string {
				out, err := renderMarkdown(md, "auto")
				if err != nil {
					c.Logger.Debug("render markdown", "err", err)
					return md
				}
				return out
			}
			p := tea.NewProgram(NewRuleBrowserModel(rs.Rules, render), tea.WithContext(cmd.Context()), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}

// ruleSetPath returns the rule set named in args, or rules.json.
func ruleSetPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "rules.json"
}

// renderMarkdown formats md for the terminal with the named glamour style.
func renderMarkdown(md, style string) (string, error) {
	opt := glamour.WithStandardStyle(style)
	if style == "" || style == "auto" {
		opt = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(defaultWrap))
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
