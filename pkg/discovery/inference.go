package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/stackrules/pkg/deps"
	errs "github.com/matzehuels/stackrules/pkg/errors"
	"github.com/matzehuels/stackrules/pkg/integrations"
	"github.com/matzehuels/stackrules/pkg/integrations/gemini"
	"github.com/matzehuels/stackrules/pkg/rules"
)

// DefaultReadmeBudget is the number of README characters sent to the model.
const DefaultReadmeBudget = 4000

// InferenceStrategy asks a language model to write a rule from the
// package README. It runs only when a model is configured.
type InferenceStrategy struct {
	forge   Forge
	model   Completer
	budget  int
	weights rules.Weights
}

// NewInferenceStrategy creates the inference tier. A nil model makes every
// Discover call a CREDENTIAL_MISSING skip. A budget <= 0 selects
// [DefaultReadmeBudget].
func NewInferenceStrategy(forge Forge, model Completer, budget int, w rules.Weights) *InferenceStrategy {
	if budget <= 0 {
		budget = DefaultReadmeBudget
	}
	return &InferenceStrategy{forge: forge, model: model, budget: budget, weights: w.WithDefaults()}
}

func (s *InferenceStrategy) Tier() Tier { return TierInference }

func (s *InferenceStrategy) Discover(ctx context.Context, meta deps.PackageMetadata) TierResult {
	if s.model == nil {
		return skipped(TierInference, errs.ErrCodeCredentialMissing, "no model credential configured")
	}
	ref, ok := githubRepo(meta)
	if !ok {
		return skipped(TierInference, errs.ErrCodeUnsupported, "%s has no GitHub repository", meta.Name)
	}

	readme, err := s.forge.GetReadme(ctx, ref.Owner, ref.Name)
	if errors.Is(err, integrations.ErrNotFound) {
		return skipped(TierInference, errs.ErrCodeNotFound, "%s/%s has no README", ref.Owner, ref.Name)
	}
	if err != nil {
		return failed(TierInference, err)
	}
	if strings.TrimSpace(readme) == "" {
		return skipped(TierInference, errs.ErrCodeNotFound, "%s/%s has an empty README", ref.Owner, ref.Name)
	}

	raw, err := s.model.Complete(ctx, buildPrompt(meta, truncateRunes(readme, s.budget)), gemini.ObjectSchema("rule"))
	if err != nil {
		return failed(TierInference, err)
	}
	var resp struct {
		Rule string `json:"rule"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return failed(TierInference, errs.Wrap(errs.ErrCodeModelInference, err, "decode model response"))
	}
	if strings.TrimSpace(resp.Rule) == "" {
		return failed(TierInference, errs.New(errs.ErrCodeModelInference, "model returned an empty rule"))
	}

	cat := rules.CategoryDocumentation
	if meta.InferredFramework != "" {
		cat = rules.CategoryFramework
	}
	r := rules.New(meta.Name+" inferred guidelines", rules.SourceInference, cat, resp.Rule, s.weights)
	r.Description = "Generated from the README of " + ref.Owner + "/" + ref.Name
	r.Content.Tags = []string{"inferred"}
	r.Targeting = targeting(meta)
	return found(TierInference, []rules.Rule{r})
}

// truncateRunes cuts s to at most n characters without splitting a rune.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func buildPrompt(meta deps.PackageMetadata, readme string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You write concise coding-assistant rules for the %s package %q", meta.Registry, meta.Name)
	if meta.Version != "" {
		fmt.Fprintf(&b, " (version %s)", meta.Version)
	}
	b.WriteString(".\n")
	if meta.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", meta.Description)
	}
	if meta.InferredFramework != "" {
		fmt.Fprintf(&b, "Framework: %s\n", meta.InferredFramework)
	}
	b.WriteString("\nFrom the README below, write Markdown guidelines an AI assistant should follow ")
	b.WriteString("when writing code that uses this package: idiomatic usage, common pitfalls, ")
	b.WriteString("and APIs to prefer. Do not invent APIs that the README does not mention.\n")
	b.WriteString(`Answer with a JSON object {"rule": "<markdown>"}.` + "\n\n")
	b.WriteString("README:\n")
	b.WriteString(readme)
	return b.String()
}
