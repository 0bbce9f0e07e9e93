// Package goproxy reads module metadata from a Go module proxy
// (https://proxy.golang.org by default).
//
//	client := goproxy.NewClient(backend, 24*time.Hour)
//	mod, err := client.FetchModule(ctx, "github.com/spf13/cobra", "", false)
//	repo := mod.Repository() // "https://github.com/spf13/cobra"
//
// A fetch pins the version (@latest or @v/{version}.info), lists tagged
// versions (@v/list) and parses the module's go.mod with x/mod/modfile,
// keeping direct requirements only. Modules without a go.mod yield no
// dependencies. Paths are case-escaped with x/mod/module.
package goproxy
