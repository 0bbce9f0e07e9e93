// Package pkg provides the libraries behind stackrules, which discovers usage
// rules for the dependencies of a project.
//
// # Overview
//
// A usage rule is a Markdown document that tells a coding assistant how a
// library wants to be used: an llms.txt published next to the docs, a
// .cursorrules file in the source repository, or guidelines inferred from the
// README by a model. The pkg directory is organized as follows:
//
//  1. [deps] - Manifest readers and registry metadata fetchers per ecosystem
//  2. [integrations] - HTTP clients for registries, GitHub and Gemini
//  3. [discovery] - Tiered rule discovery and the concurrent orchestrator
//  4. [rules] - Rule types, confidence scoring and prioritization
//  5. [cache] - HTTP and result caching backends (file, memory, Redis, MongoDB)
//  6. [credentials] - GitHub token and Gemini API key resolution
//  7. [io] - Rule set JSON and Markdown documents
//  8. [pipeline] - Orchestration (read → discover → rank)
//
// # Architecture
//
// The typical data flow:
//
//	package.json / pyproject.toml / Cargo.toml / go.mod / ...
//	         ↓
//	    [deps] package (read direct dependencies, fetch registry metadata)
//	         ↓
//	    [discovery] package (homepage → repository → inference)
//	         ↓
//	    [rules] package (score, dedupe, rank)
//	         ↓
//	    rules.json / rules.md
//
// # Quick Start
//
// Discover rules for a manifest and write them as JSON:
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/matzehuels/stackrules/pkg/cache"
//	    rulesio "github.com/matzehuels/stackrules/pkg/io"
//	    "github.com/matzehuels/stackrules/pkg/pipeline"
//	)
//
//	func main() {
//	    c, _ := cache.NewFileCache(os.TempDir())
//	    runner := pipeline.NewRunner(c, nil, nil)
//	    defer runner.Close()
//
//	    res, err := runner.Execute(context.Background(), pipeline.Options{
//	        Manifests:    []string{"package.json"},
//	        GitHubToken:  os.Getenv("GITHUB_TOKEN"),
//	        GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
//	    })
//	    if err != nil {
//	        panic(err)
//	    }
//	    rulesio.ExportJSON(res.RuleSet, "rules.json")
//	}
//
// Without a Gemini key the inference tier is skipped; without a GitHub token
// repository scans run against the unauthenticated rate limit.
//
// [deps]: https://pkg.go.dev/github.com/matzehuels/stackrules/pkg/deps
// [integrations]: https://pkg.go.dev/github.com/matzehuels/stackrules/pkg/integrations
// [discovery]: https://pkg.go.dev/github.com/matzehuels/stackrules/pkg/discovery
// [rules]: https://pkg.go.dev/github.com/matzehuels/stackrules/pkg/rules
// [cache]: https://pkg.go.dev/github.com/matzehuels/stackrules/pkg/cache
// [credentials]: https://pkg.go.dev/github.com/matzehuels/stackrules/pkg/credentials
// [io]: https://pkg.go.dev/github.com/matzehuels/stackrules/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stackrules/pkg/pipeline
package pkg
