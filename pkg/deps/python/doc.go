// Package python reads Python manifests and fetches package metadata from PyPI.
//
// Supported manifests are pip requirements files (including nested "-r"
// includes), pyproject.toml in both PEP 621 and Poetry layouts, and Pipfile.
// Lockfiles are not read: they list the transitive closure, while rule
// discovery only targets what a project declares directly.
package python
