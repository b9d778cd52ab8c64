package llm

// Schema is a provider-neutral structural contract for tool arguments.
// The Gemini client converts it to genai's schema type; the REST providers
// render it into the prompt as JSON.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

func Object(props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: "object", Properties: props, Required: required}
}

func String(desc string) *Schema { return &Schema{Type: "string", Description: desc} }

func Number(desc string) *Schema { return &Schema{Type: "number", Description: desc} }

func Array(items *Schema) *Schema { return &Schema{Type: "array", Items: items} }

func Enum(desc string, values ...string) *Schema {
	return &Schema{Type: "string", Description: desc, Enum: values}
}
