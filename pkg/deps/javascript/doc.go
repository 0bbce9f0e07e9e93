// Package javascript provides npm package metadata and package.json reading.
//
// # Overview
//
// This package implements [deps.Language] for JavaScript/Node.js, supporting:
//
//   - npm registry metadata via the [npm] client
//   - package.json manifest reading
//
// # Registry Metadata
//
// The fetcher loads the package document once, resolves the requested
// version or range against its version list, and maps the selected version
// to [deps.PackageMetadata] (keywords, maintainers, peer dependencies and
// publish time included).
//
// # Manifest Reading
//
// All four dependency sections are read; each dependency is tagged with its
// scope. Workspace and local-path dependencies are skipped, and git or URL
// dependencies resolve to the latest release.
//
// [npm]: github.com/matzehuels/stackrules/pkg/integrations/npm
// [deps.Language]: github.com/matzehuels/stackrules/pkg/deps.Language
// [deps.PackageMetadata]: github.com/matzehuels/stackrules/pkg/deps.PackageMetadata
package javascript
