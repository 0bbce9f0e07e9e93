// Package deps provides registry metadata fetching and manifest reading for
// rule discovery.
//
// # Overview
//
// stackrules looks up every dependency of a project in its package registry
// before searching for usage rules. This package defines:
//
//   - [Dependency]: one manifest entry (name, version range, source file, scope)
//   - [RegistryType]: the closed set of supported registries
//   - [PackageMetadata]: what a registry knows about a package
//   - [Fetcher]: the capability interface registry adapters implement
//   - [Registry]: an explicit set of fetchers, built once and injected
//   - [ManifestReader]: readers for package.json, Cargo.toml, go.mod, ...
//
// # Architecture
//
// Metadata fetching has three layers:
//
//  1. Integrations ([integrations]): Low-level HTTP clients for each registry API
//  2. Language adapters (subpackages): wrap clients into [Fetcher] and bundle manifest readers
//  3. Discovery ([discovery]): resolves a [Dependency] to its registry and fetcher
//
// # Registry Selection
//
// A dependency's registry is derived once from the manifest it came from:
//
//	deps.RegistryTypeFromSource("Cargo.toml")       // cargo
//	deps.RegistryTypeFromSource("requirements.txt") // pypi
//	deps.RegistryTypeFromSource("unknown.lock")     // npm (default)
//
// Build a [Registry] from the language list and ask it for a fetcher:
//
//	reg := deps.NewRegistryFor(deps.Options{Cache: c}, languages.All...)
//	meta, err := reg.FetchMetadata(ctx, deps.RegistryNPM, "react", "^18.2.0", false)
//
// # Versions
//
// [ResolveVersion] turns a manifest version spec into a concrete version:
// empty, "latest" and "*" mean the registry's latest tag; semver ranges are
// matched against the published versions using Masterminds/semver.
//
// # Framework Inference
//
// [NewPackageMetadata] derives InferredFramework from keywords and
// dependency names so discovery can target framework-specific rules.
//
// [integrations]: github.com/matzehuels/stackrules/pkg/integrations
// [discovery]: github.com/matzehuels/stackrules/pkg/discovery
package deps
