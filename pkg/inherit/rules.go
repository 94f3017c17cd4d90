package inherit

import (
	"fmt"
	"strings"

	"github.com/clubworks/hookconf/pkg/types"
)

// applyRule applies one rule to the document, expanding wildcard segments
// against the current document state.
func applyRule(doc types.Document, rule Rule) error {
	segments := strings.Split(rule.Path, ".")
	return applySegments(doc, segments, rule)
}

func applySegments(node map[string]interface{}, segments []string, rule Rule) error {
	if len(segments) == 0 {
		return fmt.Errorf("empty rule path")
	}
	head, rest := segments[0], segments[1:]

	if head == "*" {
		// Fan the rule out over every key at this level.
		for key := range node {
			if len(rest) == 0 {
				if err := applyLeaf(node, key, rule); err != nil {
					return err
				}
				continue
			}
			child, ok := node[key].(map[string]interface{})
			if !ok {
				continue
			}
			if err := applySegments(child, rest, rule); err != nil {
				return err
			}
		}
		return nil
	}

	if len(rest) == 0 {
		return applyLeaf(node, head, rule)
	}

	next, exists := node[head]
	if !exists {
		child := make(map[string]interface{})
		node[head] = child
		return applySegments(child, rest, rule)
	}
	child, ok := next.(map[string]interface{})
	if !ok {
		return fmt.Errorf("segment %q is not an object", head)
	}
	return applySegments(child, rest, rule)
}

func applyLeaf(node map[string]interface{}, key string, rule Rule) error {
	switch rule.Kind {
	case RuleOverride:
		node[key] = cloneRuleValue(rule.Value)
		return nil

	case RuleMerge:
		existing, existingIsMap := node[key].(map[string]interface{})
		value, valueIsMap := rule.Value.(map[string]interface{})
		if existingIsMap && valueIsMap {
			node[key] = mergeObjects(existing, value)
			return nil
		}
		// Non-object values degrade to override.
		node[key] = cloneRuleValue(rule.Value)
		return nil

	case RuleAppend:
		existing, existingIsArr := asArray(node[key])
		value, valueIsArr := asArray(rule.Value)
		if !existingIsArr || !valueIsArr {
			return fmt.Errorf("append requires arrays on both sides, got %T and %T", node[key], rule.Value)
		}
		node[key] = append(existing, value...)
		return nil

	default:
		return fmt.Errorf("unknown rule kind %q", rule.Kind)
	}
}

// mergeObjects deep-merges override onto base: nested objects merge
// recursively, arrays and scalar leaves are replaced by the override value.
func mergeObjects(base, override map[string]interface{}) map[string]interface{} {
	for key, overrideValue := range override {
		baseValue, present := base[key]
		if present {
			baseMap, baseIsMap := baseValue.(map[string]interface{})
			overrideMap, overrideIsMap := overrideValue.(map[string]interface{})
			if baseIsMap && overrideIsMap {
				base[key] = mergeObjects(baseMap, overrideMap)
				continue
			}
		}
		base[key] = cloneRuleValue(overrideValue)
	}
	return base
}

func asArray(v interface{}) ([]interface{}, bool) {
	switch arr := v.(type) {
	case []interface{}:
		return arr, true
	case []string:
		out := make([]interface{}, len(arr))
		for i, s := range arr {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

func cloneRuleValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return types.CloneDocument(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = cloneRuleValue(item)
		}
		return out
	default:
		return v
	}
}
