package gemini

import "google.golang.org/genai"

// ObjectSchema builds a schema for a JSON object whose properties are all
// required strings.
func ObjectSchema(props ...string) *Schema {
	s := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(props)),
		Required:   props,
	}
	for _, p := range props {
		s.Properties[p] = &genai.Schema{Type: genai.TypeString}
	}
	return s
}
