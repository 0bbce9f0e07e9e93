package deps

import "testing"

func TestInferFramework(t *testing.T) {
	tests := []struct {
		name     string
		pkg      string
		keywords []string
		deps     map[string]string
		peers    map[string]string
		want     string
	}{
		{"peer react", "react-hook-form", nil, nil, map[string]string{"react": "^18"}, "react"},
		{"keyword vue", "pinia", []string{"vue", "store"}, nil, nil, "vue"},
		{"next wins over react", "next-auth", nil, nil, map[string]string{"next": "*", "react": "*"}, "next"},
		{"self is framework", "django", nil, nil, nil, "django"},
		{"go module dependency", "github.com/gin-contrib/cors", nil, map[string]string{"github.com/gin-gonic/gin": "v1.9.1"}, nil, "gin"},
		{"composer", "spatie/laravel-permission", nil, map[string]string{"laravel/framework": "^10"}, nil, "laravel"},
		{"case insensitive keyword", "x", []string{"FastAPI"}, nil, nil, "fastapi"},
		{"nothing", "left-pad", []string{"string", "pad"}, nil, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferFramework(tt.pkg, tt.keywords, tt.deps, tt.peers); got != tt.want {
				t.Errorf("InferFramework() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsFramework(t *testing.T) {
	if !IsFramework("React") {
		t.Error("react should be a framework")
	}
	if IsFramework("lodash") {
		t.Error("lodash is not a framework")
	}
	if len(Frameworks()) == 0 {
		t.Error("Frameworks() should not be empty")
	}
}
