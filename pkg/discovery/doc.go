// Package discovery finds usage rules for dependencies.
//
// # Tiers
//
// Rules come from three strategies, tried strictly in order. The first tier
// that yields at least one rule ends the search for that dependency:
//
//  1. [HomepageStrategy] fetches llms.txt from the apex domain of the
//     package homepage.
//  2. [RepositoryStrategy] scans the source repository for rule files
//     (.vibe/, .cursor/rules/, .cursorrules, CLAUDE.md, AGENTS.md, ...).
//  3. [InferenceStrategy] asks a language model to distil a rule from the
//     repository README.
//
// Each strategy returns a [TierResult]. Tier failures (timeouts, malformed
// model output, missing credentials) never abort discovery; they are recorded
// in TierResult.Err and the next tier runs.
//
// # Orchestration
//
// [Orchestrator.Discover] produces exactly one [Result] per dependency and
// never fails: a metadata fetch error is reported in Result.Error.
// [Orchestrator.DiscoverMany] runs Discover over a batch with a bounded
// number of dependencies in flight and collects every result; one failing
// dependency never affects another.
//
// Results are cached by package identity in a [ResultCache]; a hit skips
// every network call for that dependency.
package discovery
