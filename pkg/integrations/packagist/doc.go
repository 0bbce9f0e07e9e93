// Package packagist reads Composer package metadata from the Packagist p2
// endpoint (https://repo.packagist.org/p2/{vendor}/{name}.json).
//
//	client := packagist.NewClient(backend, 24*time.Hour)
//	info, err := client.FetchPackage(ctx, "symfony/console", "", false)
//
// The endpoint serves minified "composer/2.0" documents in which each
// version only lists fields that changed from the one before it; versions
// are expanded before they are decoded, and "__unset" drops an inherited
// field. An empty version selects the newest stable release. Platform
// requirements (php, ext-*, lib-*, composer-*-api) are removed by
// [FilterPlatform].
package packagist
