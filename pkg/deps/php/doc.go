// Package php reads composer.json manifests and fetches package metadata
// from Packagist.
package php
