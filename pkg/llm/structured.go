package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/mitchellh/mapstructure"
)

var (
	validate = validator.New(validator.WithRequiredStructEnabled())

	schemaCache sync.Map // reflect.Type -> []byte
)

// Structured runs a JSON generation and decodes the result into T.
// Gateway errors pass through unchanged; anything that does not decode or
// validate against T is a ModelError with ReasonMalformedOutput and the raw
// text attached.
func Structured[T any](ctx context.Context, g Generator, prompt string) (T, error) {
	var zero T
	schema, err := SchemaFor[T]()
	if err != nil {
		return zero, err
	}
	raw, err := g.GenerateJSON(ctx, prompt, schema)
	if err != nil {
		return zero, err
	}
	out, err := Decode[T](raw)
	if err != nil {
		return zero, malformed(err, raw)
	}
	return out, nil
}

// SchemaFor returns the JSON schema for T, reflected once per type.
func SchemaFor[T any]() ([]byte, error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if cached, ok := schemaCache.Load(typ); ok {
		return cached.([]byte), nil
	}
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := reflector.ReflectFromType(typ)
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema for %s: %w", typ, err)
	}
	schemaCache.Store(typ, data)
	return data, nil
}

// Decode parses untrusted model output into T: it strips markdown fences,
// cuts the outermost JSON value, decodes with weak typing and validates
// struct tags.
func Decode[T any](raw string) (T, error) {
	var out T
	body := extractJSON(raw)
	if body == "" {
		return out, errors.New("no JSON value in model output")
	}

	var generic any
	if err := json.Unmarshal([]byte(body), &generic); err != nil {
		return out, fmt.Errorf("parse JSON: %w", err)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(generic); err != nil {
		return out, fmt.Errorf("decode: %w", err)
	}

	if k := reflect.Indirect(reflect.ValueOf(&out)).Kind(); k == reflect.Struct {
		if err := validate.Struct(out); err != nil {
			return out, fmt.Errorf("validate: %w", err)
		}
	}
	return out, nil
}

// extractJSON returns the outermost object or array in s.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```JSON")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return ""
	}
	return s[start : end+1]
}
