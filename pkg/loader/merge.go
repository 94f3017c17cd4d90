package loader

import "github.com/clubworks/hookconf/pkg/types"

// mergeWithDefaults fills a raw document in from the defaults: an omitted
// top-level section inherits the full default section, a partially specified
// section only gains the keys it is missing (recursively within common
// objects). Values the document carries always win.
func mergeWithDefaults(doc, defaults types.Document) types.Document {
	out := types.CloneDocument(doc)
	for key, defValue := range defaults {
		current, present := out[key]
		if !present {
			out[key] = cloneAny(defValue)
			continue
		}
		currentMap, currentIsMap := current.(map[string]interface{})
		defMap, defIsMap := defValue.(map[string]interface{})
		if currentIsMap && defIsMap {
			out[key] = fillMissing(currentMap, defMap)
		}
	}
	return out
}

func fillMissing(current, defaults map[string]interface{}) map[string]interface{} {
	for key, defValue := range defaults {
		existing, present := current[key]
		if !present {
			current[key] = cloneAny(defValue)
			continue
		}
		existingMap, existingIsMap := existing.(map[string]interface{})
		defMap, defIsMap := defValue.(map[string]interface{})
		if existingIsMap && defIsMap {
			current[key] = fillMissing(existingMap, defMap)
		}
	}
	return current
}

// overlayOnto deep-merges an override document onto a base object: nested
// objects merge recursively, everything else is replaced by the override.
func overlayOnto(base, override map[string]interface{}) map[string]interface{} {
	for key, overrideValue := range override {
		baseValue, present := base[key]
		if present {
			baseMap, baseIsMap := baseValue.(map[string]interface{})
			overrideMap, overrideIsMap := overrideValue.(map[string]interface{})
			if baseIsMap && overrideIsMap {
				base[key] = overlayOnto(baseMap, overrideMap)
				continue
			}
		}
		base[key] = cloneAny(overrideValue)
	}
	return base
}

func cloneAny(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return types.CloneDocument(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = cloneAny(item)
		}
		return out
	default:
		return v
	}
}
