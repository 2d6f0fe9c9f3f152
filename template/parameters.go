// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package template

import (
	"encoding/json"
	"log/slog"
	"strings"
)

const placeholderLocation = "westus2"

// refNotAvailPrefix marks parameter values supplied as key vault references,
// which a static analyzer cannot resolve.
const refNotAvailPrefix = "REF_NOT_AVAIL_"

// paramDefinition is one entry of the template's parameters section.
type paramDefinition struct {
	name          string
	typ           string
	defaultValue  any
	hasDefault    bool
	allowedValues []any
	minLength     int
	hasMinLength  bool
	maxLength     int
	hasMaxLength  bool
	minValue      float64
	hasMinValue   bool
}

// parseParamDefinitions reads the parameters section of a template document.
// Malformed entries are skipped; the deployment service would reject them
// but the analyzer stays lenient.
func parseParamDefinitions(doc map[string]any, logger *slog.Logger) map[string]*paramDefinition {
	out := make(map[string]*paramDefinition)
	raw, ok := foldGet(doc, "parameters")
	if !ok {
		return out
	}
	section, ok := asObject(raw)
	if !ok {
		logger.Warn("template parameters section is not an object, ignoring")
		return out
	}
	for name, v := range section {
		entry, ok := asObject(v)
		if !ok {
			logger.Warn("parameter declaration is not an object, ignoring", "parameter", name)
			continue
		}
		def := &paramDefinition{name: name, typ: foldString(entry, "type")}
		if dv, ok := foldGet(entry, "defaultValue"); ok {
			def.defaultValue = dv
			def.hasDefault = true
		}
		if av, ok := foldGet(entry, "allowedValues"); ok {
			def.allowedValues, _ = asArray(av)
		}
		if n, ok := foldNumber(entry, "minLength"); ok {
			def.minLength = int(n)
			def.hasMinLength = true
		}
		if n, ok := foldNumber(entry, "maxLength"); ok {
			def.maxLength = int(n)
			def.hasMaxLength = true
		}
		if n, ok := foldNumber(entry, "minValue"); ok {
			def.minValue = n
			def.hasMinValue = true
		}
		out[name] = def
	}
	return out
}

func foldNumber(obj map[string]any, key string) (float64, bool) {
	v, ok := foldGet(obj, key)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// placeholderValue generates a deterministic stand-in for a parameter that
// was neither supplied nor defaulted. The value must satisfy the declared
// constraints or rules matching on it would misfire.
func placeholderValue(def *paramDefinition) any {
	if len(def.allowedValues) > 0 {
		return def.allowedValues[0]
	}
	switch strings.ToLower(def.typ) {
	case "int":
		if def.hasMinValue {
			return def.minValue
		}
		return float64(1)
	case "bool":
		return false
	case "array":
		return []any{}
	case "object", "secureobject":
		return map[string]any{}
	default:
		// string, secureString and anything unrecognized
		if strings.Contains(strings.ToLower(def.name), "location") {
			return placeholderLocation
		}
		s := strings.ToLower(def.name)
		if s == "" {
			s = "placeholder"
		}
		for def.hasMinLength && len(s) < def.minLength {
			s += "x"
		}
		if def.hasMaxLength && def.maxLength > 0 && len(s) > def.maxLength {
			s = s[:def.maxLength]
		}
		return s
	}
}

// suppliedParameter is one entry of a parameters file.
type suppliedParameter struct {
	value       any
	isReference bool
}

// parseParametersFile parses the ARM parameters file shape:
// { "parameters": { "<name>": { "value": ... } | { "reference": {...} } } }.
func parseParametersFile(identifier string, data []byte) (map[string]suppliedParameter, error) {
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, NewErrParameterParse(identifier, "invalid JSON", err)
	}
	raw, ok := foldGet(root, "parameters")
	if !ok {
		return nil, NewErrParameterParse(identifier, "missing parameters key", nil)
	}
	section, ok := asObject(raw)
	if !ok {
		return nil, NewErrParameterParse(identifier, "parameters is not an object", nil)
	}
	out := make(map[string]suppliedParameter, len(section))
	for name, v := range section {
		entry, ok := asObject(v)
		if !ok {
			return nil, NewErrParameterParse(identifier, "parameter "+name+" is not an object", nil)
		}
		if value, ok := foldGet(entry, "value"); ok {
			out[name] = suppliedParameter{value: value}
			continue
		}
		if _, ok := foldGet(entry, "reference"); ok {
			out[name] = suppliedParameter{isReference: true}
			continue
		}
		return nil, NewErrParameterParse(identifier, "parameter "+name+" has neither value nor reference", nil)
	}
	return out, nil
}

// bindParameters resolves the effective raw value of every parameter:
// supplied value first, then the declared default, then a placeholder.
// Key vault references become REF_NOT_AVAIL_<name> literals. Supplied
// parameters that were never declared are bound as-is.
func bindParameters(defs map[string]*paramDefinition, supplied map[string]suppliedParameter) map[string]any {
	out := make(map[string]any, len(defs))
	for name, def := range defs {
		if sp, ok := lookupSupplied(supplied, name); ok {
			if sp.isReference {
				out[name] = refNotAvailPrefix + name
			} else {
				out[name] = sp.value
			}
			continue
		}
		if def.hasDefault {
			out[name] = def.defaultValue
			continue
		}
		out[name] = placeholderValue(def)
	}
	for name, sp := range supplied {
		if _, ok := lookupDeclared(defs, name); ok {
			continue
		}
		if sp.isReference {
			out[name] = refNotAvailPrefix + name
			continue
		}
		out[name] = sp.value
	}
	return out
}

func lookupSupplied(supplied map[string]suppliedParameter, name string) (suppliedParameter, bool) {
	if sp, ok := supplied[name]; ok {
		return sp, true
	}
	bestKey := ""
	found := false
	for k := range supplied {
		if strings.EqualFold(k, name) && (!found || k < bestKey) {
			bestKey, found = k, true
		}
	}
	if !found {
		return suppliedParameter{}, false
	}
	return supplied[bestKey], true
}

func lookupDeclared(defs map[string]*paramDefinition, name string) (*paramDefinition, bool) {
	if def, ok := defs[name]; ok {
		return def, true
	}
	for k, def := range defs {
		if strings.EqualFold(k, name) {
			return def, true
		}
	}
	return nil, false
}
