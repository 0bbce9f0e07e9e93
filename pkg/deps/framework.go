package deps

import "strings"

// frameworks maps package names and keywords to the framework they indicate.
// Order matters: meta-frameworks come before the libraries they build on so
// a Next.js plugin is reported as "next" rather than "react".
var frameworks = []struct {
	name    string
	signals []string
}{
	{"next", []string{"next", "nextjs", "next.js"}},
	{"nuxt", []string{"nuxt", "nuxtjs"}},
	{"sveltekit", []string{"@sveltejs/kit", "sveltekit"}},
	{"remix", []string{"@remix-run/react", "remix"}},
	{"astro", []string{"astro"}},
	{"react", []string{"react", "react-dom", "reactjs"}},
	{"vue", []string{"vue", "vuejs"}},
	{"angular", []string{"@angular/core", "angular"}},
	{"svelte", []string{"svelte"}},
	{"solid", []string{"solid-js", "solidjs"}},
	{"express", []string{"express", "expressjs"}},
	{"fastify", []string{"fastify"}},
	{"nestjs", []string{"@nestjs/core", "nestjs"}},
	{"hono", []string{"hono"}},
	{"fresh", []string{"$fresh", "@fresh/core", "fresh"}},
	{"django", []string{"django"}},
	{"flask", []string{"flask"}},
	{"fastapi", []string{"fastapi"}},
	{"actix-web", []string{"actix-web", "actix"}},
	{"axum", []string{"axum"}},
	{"rocket", []string{"rocket"}},
	{"gin", []string{"github.com/gin-gonic/gin", "gin"}},
	{"echo", []string{"github.com/labstack/echo/v4", "github.com/labstack/echo"}},
	{"fiber", []string{"github.com/gofiber/fiber/v2", "gofiber"}},
	{"laravel", []string{"laravel/framework", "laravel"}},
	{"symfony", []string{"symfony/framework-bundle", "symfony"}},
}

// InferFramework guesses the framework a package belongs to from its own
// name, its keywords and the names of its (peer) dependencies. Returns ""
// when nothing matches.
func InferFramework(name string, keywords []string, dependencies, peers map[string]string) string {
	signals := make(map[string]bool, len(keywords)+len(dependencies)+len(peers))
	for _, k := range keywords {
		signals[strings.ToLower(strings.TrimSpace(k))] = true
	}
	for d := range dependencies {
		signals[strings.ToLower(d)] = true
	}
	for d := range peers {
		signals[strings.ToLower(d)] = true
	}
	self := strings.ToLower(name)

	for _, fw := range frameworks {
		for _, s := range fw.signals {
			if signals[s] {
				return fw.name
			}
		}
	}
	// A framework package itself (e.g. "react", "django") belongs to itself.
	for _, fw := range frameworks {
		for _, s := range fw.signals {
			if self == s {
				return fw.name
			}
		}
	}
	return ""
}

// IsFramework reports whether name is a framework known to InferFramework.
func IsFramework(name string) bool {
	name = strings.ToLower(name)
	for _, fw := range frameworks {
		if fw.name == name {
			return true
		}
	}
	return false
}

// Frameworks returns the names of all known frameworks.
func Frameworks() []string {
	out := make([]string, len(frameworks))
	for i, fw := range frameworks {
		out[i] = fw.name
	}
	return out
}
