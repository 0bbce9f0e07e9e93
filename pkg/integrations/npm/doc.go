// Package npm reads packuments from the npm registry
// (https://registry.npmjs.org).
//
//	client := npm.NewClient(backend, 24*time.Hour)
//	p, err := client.FetchPackument(ctx, "express", false)
//	info, err := p.Info("") // dist-tags.latest
//
// A packument is reduced to the fields rule discovery reads before it is
// cached: per-version description, homepage, repository, license,
// keywords, maintainers, dependencies and peerDependencies. Range
// resolution against [Packument.VersionList] is left to the caller. Scoped
// names keep their "@" in the request path.
package npm
