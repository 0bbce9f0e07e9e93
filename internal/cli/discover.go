package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackrules/pkg/credentials"
	"github.com/matzehuels/stackrules/pkg/deps"
	"github.com/matzehuels/stackrules/pkg/deps/languages"
	"github.com/matzehuels/stackrules/pkg/discovery"
	rulesio "github.com/matzehuels/stackrules/pkg/io"
	"github.com/matzehuels/stackrules/pkg/pipeline"
)

// stdioArg selects standard input as a manifest source or standard
// output as the destination.
const stdioArg = "-"

// discoverFlags holds the flags shared by discover and discover pkg.
// Only flags the user set override the config file.
type discoverFlags struct {
	concurrency   int
	refresh       bool
	noCache       bool
	cacheBackend  string
	model         string
	readmeBudget  int
	minConfidence float64
	output        string
	format        string
	filename      string
}

func (f *discoverFlags) register(cmd *cobra.Command) {
	fs := cmd.PersistentFlags()
	fs.IntVarP(&f.concurrency, "concurrency", "c", pipeline.DefaultConcurrency, "dependencies discovered in parallel")
	fs.BoolVar(&f.refresh, "refresh", false, "ignore cached results and discover again")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fs.StringVar(&f.cacheBackend, "cache-backend", backendFile, "cache backend: file, memory, redis, mongo, none")
	fs.StringVar(&f.model, "model", pipeline.DefaultModel, "Gemini model used for inferred rules")
	fs.IntVar(&f.readmeBudget, "readme-budget", pipeline.DefaultReadmeBudget, "README characters sent to the model")
	fs.Float64Var(&f.minConfidence, "min-confidence", 0, "drop rules below this confidence (0-1)")
	fs.StringVarP(&f.output, "output", "o", "", "output file, - for stdout (default: rules.json or rules.md)")
	fs.StringVarP(&f.format, "format", "f", pipeline.FormatJSON, "output format: json, markdown")
}

// apply copies explicitly set flags over cfg.
func (f *discoverFlags) apply(cfg *Config, cmd *cobra.Command) {
	changed := cmd.Flags().Changed
	if changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}
	if changed("model") {
		cfg.Model = f.model
	}
	if changed("readme-budget") {
		cfg.ReadmeBudget = f.readmeBudget
	}
	if changed("min-confidence") {
		cfg.MinConfidence = f.minConfidence
	}
	if changed("cache-backend") {
		cfg.Cache.Backend = f.cacheBackend
	}
	if f.noCache {
		cfg.Cache.Backend = backendNone
	}
}

// outputPath returns where the rule set is written; "-" means stdout.
func (f *discoverFlags) outputPath() string {
	if f.output != "" {
		return f.output
	}
	if f.format == pipeline.FormatMarkdown {
		return "rules.md"
	}
	return "rules.json"
}

// discoverCommand creates the discover command.
func (c *CLI) discoverCommand() *cobra.Command {
	var flags discoverFlags

	cmd := &cobra.Command{
		Use:   "discover [manifest...]",
		Short: "Discover rules for the dependencies in project manifests",
		Long: `Discover usage rules for every dependency declared in the given manifests.

Without arguments, known manifests in the current directory are used
(package.json, requirements.txt, pyproject.toml, Cargo.toml, go.mod,
composer.json, deno.json). Use - to read a manifest from standard input
together with --filename.

Each dependency is looked up in its registry, then three tiers are tried in
order until one yields rules:
  1. llms.txt on the project homepage          (confidence 0.9)
  2. rule files in the source repository        (confidence 0.7)
  3. guidelines inferred from the README        (confidence 0.5, needs GEMINI_API_KEY)

Results are cached; use --refresh to discover again.`,
		Example: `  stackrules discover
  stackrules discover package.json requirements.txt -f markdown
  cat Cargo.toml | stackrules discover - --filename Cargo.toml -o -`,
		ValidArgsFunction: completeManifests,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDiscover(cmd, &flags, func(opts *pipeline.Options) error {
				return manifestInputs(cmd.InOrStdin(), args, flags.filename, opts)
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.filename, "filename", "", "manifest file name when reading from stdin (e.g. package.json)")

	cmd.AddCommand(c.discoverPkgCommand(&flags))
	return cmd
}

// discoverPkgCommand creates the "discover pkg" subcommand.
func (c *CLI) discoverPkgCommand(flags *discoverFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "pkg <registry> <name>[@version]...",
		Short: "Discover rules for packages named on the command line",
		Long: `Discover rules for one or more packages from a single registry.

Registries: npm, jsr, pypi, cargo, go, composer (aliases such as crates,
packagist, golang and python are accepted).`,
		Example: `  stackrules discover pkg npm react
  stackrules discover pkg pypi fastapi@0.110.0 pydantic
  stackrules discover pkg go github.com/spf13/cobra@v1.10.1`,
		Args:              cobra.MinimumNArgs(2),
		ValidArgsFunction: completeRegistries,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDiscover(cmd, flags, func(opts *pipeline.Options) error {
				pkgs, err := packageInputs(args[0], args[1:])
				if err != nil {
					return err
				}
				opts.Packages = pkgs
				return nil
			})
		},
	}
}

// runDiscover layers config, environment and flags, runs the pipeline and
// writes the rule set.
func (c *CLI) runDiscover(cmd *cobra.Command, flags *discoverFlags, inputs func(*pipeline.Options) error) error {
	ctx := cmd.Context()

	if err := pipeline.ValidateFormat(flags.format); err != nil {
		return err
	}
	cfg, err := loadConfig(c.configFile, os.LookupEnv)
	if err != nil {
		return err
	}
	flags.apply(&cfg, cmd)

	opts := cfg.pipelineOptions()
	opts.Refresh = flags.refresh
	if err := inputs(&opts); err != nil {
		return err
	}
	c.resolveSecrets(ctx, &opts)

	runner, err := c.newRunner(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	metrics, resetHooks := registerMetrics(logger)
	defer resetHooks()
	spinner := newSpinner(ctx, cmd.ErrOrStderr(), "Discovering rules...")
	var results []discovery.Result
	opts.OnResult = func(r discovery.Result) {
		results = append(results, r)
		spinner.SetMessage(fmt.Sprintf("Discovering rules... %d done (%s)", len(results), r.Dependency.Name))
	}
	spinner.Start()

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Discovery failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	summary := []any{
		"dependencies", res.Batch.Stats.Processed,
		"rules", len(res.RuleSet.Rules),
		"read", res.Stats.ReadTime.Round(time.Millisecond),
		"discover", res.Stats.DiscoverTime.Round(time.Millisecond),
	}
	prog.done("discovery complete", append(summary, metrics.keyvals()...)...)

	path := flags.outputPath()
	if err := writeRuleSet(res.RuleSet, flags.format, path); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	if path == stdioArg {
		return nil
	}

	printSuccess("Discovered %d rules for %d dependencies", len(res.RuleSet.Rules), len(res.Dependencies))
	printFile(path)
	printStats(res.Batch.Stats, res.Stats.Dropped, countCached(results))
	if len(results) > 0 {
		printNewline()
		fmt.Println(summaryTable(results))
	}
	if flags.format == pipeline.FormatJSON {
		printNewline()
		printNextStep("Browse", appName+" rules browse "+path)
	}
	return nil
}

// resolveSecrets fills API credentials from the environment or the
// credential store.
func (c *CLI) resolveSecrets(ctx context.Context, opts *pipeline.Options) {
	secrets := c.secretProvider()
	opts.GitHubToken, _ = secrets.GetSecret(ctx, credentials.GitHubToken)
	opts.GeminiAPIKey, _ = secrets.GetSecret(ctx, credentials.GeminiAPIKey)
	if opts.GeminiAPIKey == "" {
		c.Logger.Warn("GEMINI_API_KEY not set; rules will not be inferred from READMEs")
	}
}

// =============================================================================
// Inputs
// =============================================================================

// manifestInputs fills opts with manifests from args, standard input, or the
// manifests found in the working directory.
func manifestInputs(stdin io.Reader, args []string, filename string, opts *pipeline.Options) error {
	if len(args) == 0 {
		found, err := detectManifests(".")
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return fmt.Errorf("no manifest found in the current directory (supported: %s)", strings.Join(manifestNames(), ", "))
		}
		opts.Manifests = found
		return nil
	}

	for _, arg := range args {
		if arg != stdioArg {
			opts.Manifests = append(opts.Manifests, arg)
			continue
		}
		if filename == "" {
			return fmt.Errorf("reading from stdin requires --filename (e.g. --filename package.json)")
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		opts.Inline = append(opts.Inline, pipeline.InlineManifest{Filename: filename, Content: string(data)})
	}
	return nil
}

// detectManifests returns the known manifest files present in dir.
func detectManifests(dir string) ([]string, error) {
	var found []string
	for _, name := range manifestNames() {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("detect manifests: %w", err)
		case !info.IsDir():
			found = append(found, path)
		}
	}
	return found, nil
}

// manifestNames lists the manifest file names of every language.
func manifestNames() []string {
	var names []string
	for _, lang := range languages.All {
		names = append(names, lang.ManifestFiles...)
	}
	return names
}

// packageInputs builds dependencies for packages named on the command line.
func packageInputs(registry string, specs []string) ([]deps.Dependency, error) {
	t, err := deps.ParseRegistryType(registry)
	if err != nil {
		return nil, err
	}
	lang := languages.ForRegistry(t)
	if lang == nil || len(lang.ManifestFiles) == 0 {
		return nil, fmt.Errorf("registry %s is not supported", t)
	}

	out := make([]deps.Dependency, 0, len(specs))
	for _, spec := range specs {
		name, version := splitPackageSpec(spec)
		if name == "" {
			return nil, fmt.Errorf("invalid package %q", spec)
		}
		out = append(out, deps.Dependency{
			Name:    name,
			Version: version,
			Source:  lang.ManifestFiles[0],
			Type:    deps.DependencyRuntime,
		})
	}
	return out, nil
}

// splitPackageSpec splits "name@version". A leading @ belongs to the name,
// as in npm scopes ("@types/node@20").
func splitPackageSpec(spec string) (name, version string) {
	spec = strings.TrimSpace(spec)
	if i := strings.LastIndex(spec, "@"); i > 0 {
		return spec[:i], spec[i+1:]
	}
	return spec, ""
}

// =============================================================================
// Output
// =============================================================================

// writeRuleSet writes rs to path ("-" for stdout) in the given format.
func writeRuleSet(rs rulesio.RuleSet, format, path string) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if format == pipeline.FormatMarkdown {
		return rulesio.WriteMarkdown(rs, out)
	}
	return rulesio.WriteJSON(rs, out)
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns stdout for "-" and creates the file at path otherwise.
func openOutput(path string) (io.WriteCloser, error) {
	if path == stdioArg {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

func countCached(results []discovery.Result) int {
	n := 0
	for _, r := range results {
		if r.Cached {
			n++
		}
	}
	return n
}

// summaryTable renders one row per dependency, sorted by registry and name.
func summaryTable(results []discovery.Result) string {
	sorted := append([]discovery.Result(nil), results...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i].Dependency, sorted[j].Dependency
		if a.Registry() != b.Registry() {
			return a.Registry() < b.Registry()
		}
		return a.Name < b.Name
	})

	rows := make([][]string, len(sorted))
	for i, r := range sorted {
		tier := string(r.Tier)
		if tier == "" {
			tier = "—"
		}
		rows[i] = []string{r.Dependency.String(), string(r.Dependency.Registry()), tier, strconv.Itoa(len(r.Rules)), resultStatus(r)}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Dependency", "Registry", "Tier", "Rules", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			r := sorted[row]
			switch {
			case r.Error != "":
				return lipgloss.NewStyle().Foreground(colorRed)
			case len(r.Rules) == 0:
				return lipgloss.NewStyle().Foreground(colorDim)
			case col == 4 && r.Cached:
				return styleCached
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

// resultStatus is the status column: the error code, cached or fresh.
func resultStatus(r discovery.Result) string {
	switch {
	case r.Error != "":
		return strings.ToLower(string(r.ErrorCode))
	case r.Cached:
		return iconCached
	case len(r.Rules) == 0:
		return "no rules"
	}
	return iconFresh
}
