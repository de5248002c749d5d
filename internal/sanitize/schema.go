// Package sanitize implements the schema-driven Input Sanitizer (SPEC_FULL.md
// §4.2): typed coercion, presence checks, text/URL/HTML cleanup, integer/float
// range checks, and enumerated sets. Each field type has its own sanitizer
// function in a dedicated file, grounded on the teacher's per-concern
// validation helpers in internal/products/postgres_repository.go
// (validateProductID/validateTableName).
package sanitize

import (
	"github.com/caldera-ledger/txregistry/internal/regerrors"
)

// FieldType enumerates the sanitizer types the schema supports.
type FieldType string

const (
	TypeInt      FieldType = "int"
	TypeFloat    FieldType = "float"
	TypeBool     FieldType = "bool"
	TypeText     FieldType = "text"
	TypeArray    FieldType = "array"
	TypeIterable FieldType = "iterable"
	TypeEmail    FieldType = "email"
	TypeURL      FieldType = "url"
	TypeHTML     FieldType = "html"
	TypeObject   FieldType = "object"
)

// Field describes one entry of a sanitization schema.
type Field struct {
	Value    any
	Type     FieldType
	Required bool
	Default  any
	// HasDefault distinguishes "default is nil" from "no default configured",
	// since Default itself may legitimately be nil.
	HasDefault bool
}

// Schema maps field name to its sanitization rule.
type Schema map[string]Field

// SanitizeValidate runs every field in schema through its type sanitizer and
// returns the sanitized map, or the first error encountered (missing
// required field, or a sanitizer rejecting a required value).
func SanitizeValidate(schema Schema) (map[string]any, error) {
	out := make(map[string]any, len(schema))

	for name, field := range schema {
		sanitized, present, err := sanitizeOne(field)
		if err != nil {
			return nil, regerrors.Wrap(regerrors.ErrCodeInvalidValue, name, err)
		}

		if !present {
			if field.Required {
				return nil, regerrors.New(regerrors.ErrCodeMissingRequired, name, "required field is missing")
			}
			if field.HasDefault {
				out[name] = field.Default
			} else {
				out[name] = nil
			}
			continue
		}

		if sanitized == nil && field.Required {
			return nil, regerrors.New(regerrors.ErrCodeInvalidValue, name, "sanitizer rejected required value")
		}

		out[name] = sanitized
	}

	return out, nil
}

// sanitizeOne dispatches to the type-specific sanitizer. present=false means
// the raw value was absent/nil and no default has been applied yet.
func sanitizeOne(field Field) (sanitized any, present bool, err error) {
	if !hasValue(field.Value) {
		return nil, false, nil
	}

	switch field.Type {
	case TypeInt:
		v, ok := SanitizeInt(field.Value)
		return v, true, errIfRejected(ok, "invalid integer")
	case TypeFloat:
		v, ok := SanitizeFloat(field.Value)
		return v, true, errIfRejected(ok, "invalid float")
	case TypeBool:
		v, ok := SanitizeBool(field.Value)
		return v, true, errIfRejected(ok, "invalid boolean")
	case TypeText, TypeHTML:
		v := SanitizeText(field.Value, field.Type == TypeHTML)
		if v == "" {
			return nil, true, nil
		}
		return v, true, nil
	case TypeURL:
		v, ok := SanitizeURL(field.Value)
		return v, true, errIfRejected(ok, "invalid url")
	case TypeEmail:
		v, ok := SanitizeEmail(field.Value)
		return v, true, errIfRejected(ok, "invalid email")
	case TypeArray, TypeIterable:
		return SanitizeArray(field.Value), true, nil
	case TypeObject:
		return SanitizeObject(field.Value), true, nil
	default:
		return nil, false, regerrors.New(regerrors.ErrCodeInvalidValue, "", "unknown field type")
	}
}

func errIfRejected(ok bool, msg string) error {
	if ok {
		return nil
	}
	return regerrors.New(regerrors.ErrCodeInvalidValue, "", msg)
}

// hasValue implements the sanitizer's "absent" predicate: nil, empty string,
// empty slice, and empty map are absent; 0 and false are present.
func hasValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
