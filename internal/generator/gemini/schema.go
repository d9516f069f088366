package gemini

import (
	"github.com/bcnelson/cicd-wizard/internal/prompt"
	genai "google.golang.org/genai"
)

var schemaTypes = map[prompt.Type]genai.Type{
	prompt.TypeArray:  genai.TypeArray,
	prompt.TypeObject: genai.TypeObject,
	prompt.TypeString: genai.TypeString,
}

// toSchema converts a prompt schema into the SDK's form. Property order is
// carried in PropertyOrdering.
func toSchema(s prompt.Schema) *genai.Schema {
	out := &genai.Schema{
		Type:        schemaTypes[s.Type],
		Description: s.Description,
	}
	if s.Items != nil {
		out.Items = toSchema(*s.Items)
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		out.PropertyOrdering = make([]string, 0, len(s.Properties))
		for _, p := range s.Properties {
			out.Properties[p.Name] = toSchema(p.Schema)
			out.PropertyOrdering = append(out.PropertyOrdering, p.Name)
		}
	}
	if len(s.Required) > 0 {
		out.Required = append([]string(nil), s.Required...)
	}
	return out
}
