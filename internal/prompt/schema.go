package prompt

// Type is the kind of a schema node.
type Type string

// Schema node kinds understood by the generator.
const (
	TypeArray  Type = "array"
	TypeObject Type = "object"
	TypeString Type = "string"
)

// Schema describes the shape of the generator's response. Properties keep
// their declaration order.
type Schema struct {
	Type        Type       `json:"type"`
	Description string     `json:"description,omitempty"`
	Items       *Schema    `json:"items,omitempty"`
	Properties  []Property `json:"properties,omitempty"`
	Required    []string   `json:"required,omitempty"`
}

// Property is a named field of an object schema.
type Property struct {
	Name   string `json:"name"`
	Schema Schema `json:"schema"`
}

// FilesSchema is the response shape for a generation: an array of file
// records with three required string fields.
func FilesSchema() Schema {
	return Schema{
		Type: TypeArray,
		Items: &Schema{
			Type: TypeObject,
			Properties: []Property{
				{Name: "filename", Schema: Schema{Type: TypeString, Description: "The relative path and name of the file (e.g., .github/workflows/main.yml)"}},
				{Name: "content", Schema: Schema{Type: TypeString, Description: "The full text content of the file"}},
				{Name: "description", Schema: Schema{Type: TypeString, Description: "A short one-sentence description of what this file does"}},
			},
			Required: []string{"filename", "content", "description"},
		},
	}
}
