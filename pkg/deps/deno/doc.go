// Package deno reads Deno import maps and fetches package metadata from JSR.
package deno
