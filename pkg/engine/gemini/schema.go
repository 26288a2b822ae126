package gemini

import (
	"fmt"

	"github.com/invopop/jsonschema"
	genai "google.golang.org/genai"
)

// convertSchema converts an invopop jsonschema.Schema into a Gemini Schema.
// The reflected schemas only use the subset the function-calling API accepts:
// scalar types, enums, arrays, and flat object properties.
func convertSchema(s *jsonschema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	gs := &genai.Schema{Description: s.Description}

	switch s.Type {
	case "string":
		gs.Type = genai.TypeString
	case "number":
		gs.Type = genai.TypeNumber
	case "integer":
		gs.Type = genai.TypeInteger
	case "boolean":
		gs.Type = genai.TypeBoolean
	case "array":
		gs.Type = genai.TypeArray
		gs.Items = convertSchema(s.Items)
	default:
		gs.Type = genai.TypeObject
	}

	for _, e := range s.Enum {
		gs.Enum = append(gs.Enum, fmt.Sprintf("%v", e))
	}

	if gs.Type == genai.TypeObject && s.Properties != nil {
		props := map[string]*genai.Schema{}
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			props[pair.Key] = convertSchema(pair.Value)
		}
		if len(props) > 0 {
			gs.Properties = props
		}
		gs.Required = s.Required
	}

	return gs
}
