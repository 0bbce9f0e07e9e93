// Package rust reads Cargo.toml manifests and fetches crate metadata from
// crates.io.
//
// Version requirements follow Cargo's rules: a bare version such as "1.0" is
// a caret requirement, so it is rewritten to "^1.0" before resolution.
package rust
