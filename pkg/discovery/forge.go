package discovery

import (
	"context"
	"encoding/json"

	"github.com/matzehuels/stackrules/pkg/integrations/gemini"
	"github.com/matzehuels/stackrules/pkg/integrations/github"
)

// Forge is the repository hosting API the repository and inference tiers
// read from. Missing paths are reported with errors wrapping
// [integrations.ErrNotFound]. *github.ContentClient satisfies it.
type Forge interface {
	ListDirectory(ctx context.Context, owner, repo, path string) ([]github.ContentItem, error)
	GetReadme(ctx context.Context, owner, repo string) (string, error)
	FetchFile(ctx context.Context, owner, repo, path string) (string, error)
}

// Completer is a language-model completion service returning JSON that
// conforms to schema. *gemini.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, prompt string, schema *gemini.Schema) (json.RawMessage, error)
}

var (
	_ Forge     = (*github.ContentClient)(nil)
	_ Completer = (*gemini.Client)(nil)
)
