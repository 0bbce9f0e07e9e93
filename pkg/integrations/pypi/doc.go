// Package pypi reads project metadata from the PyPI JSON API
// (https://pypi.org/pypi/{name}/json).
//
//	client := pypi.NewClient(backend, 24*time.Hour)
//	info, err := client.FetchPackage(ctx, "fastapi", "", false)
//	repo := info.RepositoryURL() // from project_urls, then home_page
//
// Names are normalized per PEP 503 before the request, so "Django_REST"
// and "django-rest" share one cache entry. Dependencies come from
// requires_dist with extra-gated requirements removed. The license is the
// SPDX license_expression when present, else the "License ::" trove
// classifier, else the first line of the license field.
package pypi
