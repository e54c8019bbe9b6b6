package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	"gopkg.in/yaml.v3"
)

// FromFile loads configuration from a file, auto-detecting format by extension.
// Supported extensions: .yaml, .yml, .json, .hcl
func FromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	case ".hcl":
		return fromHCL(data, path)
	default:
		return Config{}, fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

// FromYAML parses YAML data into a Config.
// Mappings with non-string keys are converted to map[string]any with the
// keys formatted as text.
func FromYAML(data []byte) (Config, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	for k, v := range m {
		m[k] = normalize(v)
	}
	return New(m), nil
}

// FromJSON parses JSON data into a Config.
func FromJSON(data []byte) (Config, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse json: %w", err)
	}
	return New(m), nil
}

// FromHCL parses HCL native syntax into a Config. Only attributes are
// accepted at the top level; nested structure is written as object
// expressions:
//
//	name    = "worker"
//	retries = 3
//	limits  = { cpu = 2, tags = ["a", "b"] }
//
// Numbers become float64, tuples and lists become []any, objects and maps
// become map[string]any.
func FromHCL(data []byte) (Config, error) {
	return fromHCL(data, "config.hcl")
}

func fromHCL(data []byte, filename string) (Config, error) {
	file, diags := hclsyntax.ParseConfig(data, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("parse hcl: %w", diags)
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("parse hcl: %w", diags)
	}

	m := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return Config{}, fmt.Errorf("evaluate hcl attribute %q: %w", name, diags)
		}
		native, err := ctyToNative(val)
		if err != nil {
			return Config{}, fmt.Errorf("in attribute %q: %w", name, err)
		}
		m[name] = native
	}
	return New(m), nil
}

// ctyToNative converts a cty.Value to the map[string]any / []any tree used
// by Config.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("convert number: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			name := key.AsString()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", name, err)
			}
			out[name] = native
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported hcl value type %s", ty.FriendlyName())
	}
}

// normalize rewrites map[any]any nodes produced by yaml.v3 into
// map[string]any.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, elem := range val {
			val[k] = normalize(elem)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[fmt.Sprint(k)] = normalize(elem)
		}
		return out
	case []any:
		for i, elem := range val {
			val[i] = normalize(elem)
		}
		return val
	default:
		return v
	}
}
