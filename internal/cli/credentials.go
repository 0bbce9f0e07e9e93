package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackrules/pkg/credentials"
)

// knownSecrets are the credentials discovery reads.
var knownSecrets = []struct {
	name string
	use  string
}{
	{credentials.GitHubToken, "raises GitHub API rate limits for repository scans"},
	{credentials.GeminiAPIKey, "enables rules inferred from READMEs"},
}

// credentialStore opens the credential store under the config directory.
func credentialStore() (*credentials.FileStore, error) {
	dir, err := configDir()
	if err != nil {
		return nil, fmt.Errorf("get config dir: %w", err)
	}
	return credentials.NewFileStore(filepath.Join(dir, "credentials"))
}

// credentialsCommand creates the credentials command with subcommands.
func (c *CLI) credentialsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage stored API credentials",
		Long: `Store the API credentials used during discovery.

Environment variables take precedence over stored values:
  GITHUB_TOKEN     raises GitHub API rate limits for repository scans
  GEMINI_API_KEY   enables rules inferred from READMEs (GOOGLE_API_KEY also works)

Credentials are stored as 0600 files in ~/.config/stackrules/credentials/`,
	}

	cmd.AddCommand(c.credentialsSetCommand())
	cmd.AddCommand(c.credentialsGetCommand())
	cmd.AddCommand(c.credentialsDeleteCommand())
	cmd.AddCommand(c.credentialsListCommand())

	return cmd
}

// credentialsSetCommand creates the "credentials set" subcommand.
func (c *CLI) credentialsSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <NAME> [value]",
		Short: "Store a credential (reads the value from stdin when omitted)",
		Example: `  stackrules credentials set GEMINI_API_KEY
  echo "$TOKEN" | stackrules credentials set GITHUB_TOKEN`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := credentials.ValidateName(name); err != nil {
				return err
			}

			var value string
			if len(args) == 2 {
				value = args[1]
			} else {
				fmt.Fprintf(os.Stderr, "Enter value for %s: ", name)
				v, err := readSecret(cmd.InOrStdin())
				if err != nil {
					return err
				}
				value = v
			}

			store, err := credentialStore()
			if err != nil {
				return err
			}
			if err := store.Set(cmd.Context(), name, value); err != nil {
				return err
			}
			printSuccess("Stored %s", name)
			printDetail("Value: %s", credentials.Mask(strings.TrimSpace(value)))
			return nil
		},
	}
}

// credentialsGetCommand creates the "credentials get" subcommand.
func (c *CLI) credentialsGetCommand() *cobra.Command {
	var show bool

	cmd := &cobra.Command{
		Use:   "get <NAME>",
		Short: "Show a credential and where it comes from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]
			if err := credentials.ValidateName(name); err != nil {
				return err
			}

			value, source := "", ""
			if v, ok := (credentials.Env{}).GetSecret(ctx, name); ok {
				value, source = v, "environment"
			} else {
				store, err := credentialStore()
				if err != nil {
					return err
				}
				sec, err := store.Get(ctx, name)
				if err != nil {
					return err
				}
				if sec != nil {
					value, source = sec.Value, "store"
				}
			}
			if value == "" {
				return fmt.Errorf("credential %s is not set", name)
			}

			if show {
				fmt.Println(value)
				return nil
			}
			printKeyValue(name, credentials.Mask(value))
			printDetail("Source: %s", source)
			return nil
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "print the unmasked value")
	return cmd
}

// credentialsDeleteCommand creates the "credentials delete" subcommand.
func (c *CLI) credentialsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <NAME>",
		Aliases: []string{"rm"},
		Short:   "Remove a stored credential",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := credentialStore()
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Removed %s", args[0])
			return nil
		},
	}
}

// credentialsListCommand creates the "credentials list" subcommand.
func (c *CLI) credentialsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := credentialStore()
			if err != nil {
				return err
			}
			names, err := store.List(ctx)
			if err != nil {
				return err
			}

			if len(names) == 0 {
				printInfo("No stored credentials")
			}
			for _, name := range names {
				sec, err := store.Get(ctx, name)
				if err != nil || sec == nil {
					continue
				}
				printKeyValue(name, credentials.Mask(sec.Value)+"  "+StyleDim.Render("updated "+sec.UpdatedAt.Local().Format("Jan 2, 2006")))
			}

			printNewline()
			for _, k := range knownSecrets {
				if _, ok := (credentials.Env{}).GetSecret(ctx, k.name); ok {
					printDetail("%s set in environment (overrides store)", k.name)
				} else if !slices.Contains(names, k.name) {
					printWarning("%s not set: %s", k.name, k.use)
				}
			}
			printDetail("Directory: %s", store.Path())
			return nil
		},
	}
}

// readSecret reads one line from r.
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read value: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("empty value")
	}
	return line, nil
}
