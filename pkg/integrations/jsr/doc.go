// Package jsr provides an HTTP client for the JSR registry (https://jsr.io).
//
// JSR packages are always scoped ("@std/path"). Two documents describe a
// package:
//
//   - https://jsr.io/@scope/name/meta.json lists versions and the latest tag
//   - https://api.jsr.io/scopes/{scope}/packages/{name} carries the
//     description, runtime compatibility and the linked GitHub repository
//
// # Usage
//
//	client := jsr.NewClient(cache.NewNullCache(), 24*time.Hour)
//	pkg, err := client.FetchPackage(ctx, "@std/path", false)
//	fmt.Println(pkg.Latest, pkg.Repository)
package jsr
