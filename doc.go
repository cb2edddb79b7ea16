// Package draft3 validates decoded JSON values against JSON Schema draft-3
// style schemas.
//
// Instances are the trees produced by JSON decoders (map[string]any, []any,
// string, bool, nil and numbers as Go integers, float64 or json.Number).
// Schemas are the same kind of tree, wrapped as Schema.
//
// Validation is fail-fast: the first violation is returned as Issues holding
// one Issue with a JSON Pointer path and one of the Code* constants.
//
// In ModeInteractive (the default) missing keys that declare a "default" are
// filled in place, so the caller's containers change. ModeStrict leaves the
// instance untouched and additionally validates nested mappings against
// their own embedded "$schema".
//
// Typical usage:
//
//	out, err := draft3.Validate(instance, schema)
//	if iss, ok := draft3.AsIssues(err); ok {
//		fmt.Println(iss.First().Path, iss.First().Code)
//	}
//
//	dm, err := draft3.ValidateWithMeta(instance, schema, draft3.Options{Mode: draft3.ModeStrict})
//
// Document decoding lives in document/, messages in i18n/, HTTP request
// validation in middleware/, and the CLI in cmd/draft3.
package draft3
