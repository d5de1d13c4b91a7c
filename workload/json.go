package workload

import (
	_ "embed"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/buger/jsonparser"
	"github.com/valyala/fastjson"
)

//go:embed data/projects.json
var document []byte

// JSONParse parses the embedded document into a value tree iteration
// times. The document is a build-time constant, so a parse failure means
// the binary itself is broken and the run is aborted.
func JSONParse(iteration int) error {
	return ParseRepeated(document, iteration)
}

// ParseRepeated parses doc iteration times and stops at the first failure.
func ParseRepeated(doc []byte, iteration int) error {
	for i := range iteration {
		if _, err := ParseDocument(doc); err != nil {
			return fmt.Errorf("iteration %d: %w", i, err)
		}
	}

	return nil
}

// ParseDocument validates doc and parses it into a tree of map[string]any,
// []any, string, float64, bool and nil values. The tree walker trusts its
// input, so strict validation runs first.
func ParseDocument(doc []byte) (any, error) {
	if !utf8.Valid(doc) {
		return nil, errors.New("parse json: invalid UTF-8")
	}

	if err := fastjson.ValidateBytes(doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	value, typ, _, err := jsonparser.Get(doc)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	tree, err := buildValue(value, typ)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	return tree, nil
}

func buildValue(raw []byte, typ jsonparser.ValueType) (any, error) {
	switch typ {
	case jsonparser.Object:
		obj := make(map[string]any)

		err := jsonparser.ObjectEach(raw, func(key, value []byte, vt jsonparser.ValueType, _ int) error {
			v, err := buildValue(value, vt)
			if err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}

			obj[string(key)] = v

			return nil
		})
		if err != nil {
			return nil, err
		}

		return obj, nil

	case jsonparser.Array:
		arr := make([]any, 0)

		var elemErr error

		_, err := jsonparser.ArrayEach(raw, func(value []byte, vt jsonparser.ValueType, _ int, _ error) {
			if elemErr != nil {
				return
			}

			v, err := buildValue(value, vt)
			if err != nil {
				elemErr = fmt.Errorf("index %d: %w", len(arr), err)

				return
			}

			arr = append(arr, v)
		})
		if err != nil {
			return nil, err
		}
		if elemErr != nil {
			return nil, elemErr
		}

		return arr, nil

	case jsonparser.String:
		return jsonparser.ParseString(raw)

	case jsonparser.Number:
		return jsonparser.ParseFloat(raw)

	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(raw)

	case jsonparser.Null:
		return nil, nil

	default:
		return nil, fmt.Errorf("unexpected value %q", raw)
	}
}
