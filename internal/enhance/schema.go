package enhance

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// additionalFieldsSchema constrains the model's structured output: exactly
// the two generated sentence fields, nothing else.
const additionalFieldsSchema = `{
	"type": "object",
	"properties": {
		"example_sentence_front": {
			"type": "string",
			"description": "An example sentence using the word/phrase from 'front', in the front language"
		},
		"example_sentence_back": {
			"type": "string",
			"description": "Translation of the example sentence in the back language"
		}
	},
	"required": ["example_sentence_front", "example_sentence_back"],
	"additionalProperties": false
}`

const schemaURL = "cardforge://additional_fields.json"

// additionalFields mirrors the structured output shape.
type additionalFields struct {
	ExampleSentenceFront string `json:"example_sentence_front"`
	ExampleSentenceBack  string `json:"example_sentence_back"`
}

// compileSchema compiles the structured-output schema once per client.
func compileSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(additionalFieldsSchema))
	if err != nil {
		return nil, fmt.Errorf("parsing output schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("adding output schema resource: %w", err)
	}

	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compiling output schema: %w", err)
	}
	return schema, nil
}

// parseResponse validates raw model output against the schema and decodes
// the generated fields.
func parseResponse(schema *jsonschema.Schema, raw []byte) (additionalFields, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return additionalFields{}, fmt.Errorf("model response is not valid JSON: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return additionalFields{}, fmt.Errorf("model response failed schema validation: %w", err)
	}

	var fields additionalFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return additionalFields{}, fmt.Errorf("decoding model response: %w", err)
	}
	return fields, nil
}
