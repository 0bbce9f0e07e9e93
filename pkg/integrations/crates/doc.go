// Package crates reads crate metadata from the crates.io API.
//
//	client := crates.NewClient(backend, 24*time.Hour)
//	info, err := client.FetchCrate(ctx, "serde", "", false)
//
// An empty version selects max_stable_version. Three endpoints are read:
// the crate document, the dependency list of the selected version (normal,
// non-optional dependencies only) and the owner list. crates.io rejects
// requests without a descriptive User-Agent, which the shared client sends.
package crates
