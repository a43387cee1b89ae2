package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"research-agent/internal/domain/entity"

	"github.com/invopop/jsonschema"
)

const formatInstructionsTemplate = `The output should be formatted as a JSON instance that conforms to the JSON schema below.

As an example, for the schema {"properties": {"foo": {"title": "Foo", "description": "a list of strings", "type": "array", "items": {"type": "string"}}}, "required": ["foo"]}
the object {"foo": ["bar", "baz"]} is a well-formatted instance of the schema. The object {"properties": {"foo": ["bar", "baz"]}} is not well-formatted.

Here is the output schema:
` + "```\n%s\n```"

// ResponseSchema describes and parses the research result the model is
// asked to return.
type ResponseSchema struct {
	instructions string
}

func New() (*ResponseSchema, error) {
	reflector := &jsonschema.Reflector{
		ExpandedStruct:             true,
		DoNotReference:             true,
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	s := reflector.Reflect(&entity.ResearchResult{})
	s.Version = ""
	s.ID = ""

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal response schema: %w", err)
	}

	return &ResponseSchema{
		instructions: fmt.Sprintf(formatInstructionsTemplate, data),
	}, nil
}

func (s *ResponseSchema) FormatInstructions() string {
	return s.instructions
}

var resultFields = []string{"topic", "summary", "sources", "tools_used"}

// Parse decodes the first JSON object in raw model text that carries a result
// field. Prose around the object may itself contain braces. An object with no
// result field is only a fallback, and only if no earlier candidate failed, so
// a nested fragment of a broken result is never returned. Absent fields keep
// their zero values; a malformed object or a field of the wrong type is an
// ErrSchemaValidation.
func (s *ResponseSchema) Parse(raw string) (*entity.ResearchResult, error) {
	text := strings.TrimSpace(raw)

	var fallback *entity.ResearchResult
	var firstErr error
	for offset := 0; offset < len(text); {
		i := strings.IndexByte(text[offset:], '{')
		if i == -1 {
			break
		}
		start := offset + i
		offset = start + 1

		result, keyed, err := decodeCandidate(text[start:])
		switch {
		case err != nil:
			if firstErr == nil {
				firstErr = err
			}
		case keyed:
			return result, nil
		case fallback == nil && firstErr == nil:
			fallback = result
		}
	}

	if fallback != nil {
		return fallback, nil
	}
	if firstErr == nil {
		return nil, fmt.Errorf("%w: no JSON object found in output", entity.ErrSchemaValidation)
	}
	return nil, fmt.Errorf("%w: %v", entity.ErrSchemaValidation, firstErr)
}

// decodeCandidate decodes the JSON object at the start of text and reports
// whether it has any result field.
func decodeCandidate(text string) (*entity.ResearchResult, bool, error) {
	var object json.RawMessage
	if err := json.NewDecoder(strings.NewReader(text)).Decode(&object); err != nil {
		return nil, false, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(object, &fields); err != nil {
		return nil, false, err
	}
	var result entity.ResearchResult
	if err := json.Unmarshal(object, &result); err != nil {
		return nil, false, err
	}

	if result.Sources == nil {
		result.Sources = []string{}
	}
	if result.ToolsUsed == nil {
		result.ToolsUsed = []string{}
	}

	for _, f := range resultFields {
		if _, ok := fields[f]; ok {
			return &result, true, nil
		}
	}
	return &result, false, nil
}

// Serialize renders a result in the shape Parse accepts.
func Serialize(result entity.ResearchResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
