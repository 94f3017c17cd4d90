package persist

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/clubworks/hookconf/pkg/types"
)

// ExportJSON renders the configuration as indented JSON.
func (s *Store) ExportJSON(cfg *types.SystemConfiguration) ([]byte, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, types.NewPersistenceError("", "failed to export JSON", err)
	}
	return data, nil
}

// ExportYAML renders the configuration as YAML.
func (s *Store) ExportYAML(cfg *types.SystemConfiguration) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, types.NewPersistenceError("", "failed to export YAML", err)
	}
	return data, nil
}

// ExportEnv renders the configuration as environment variable assignments:
// dot paths flattened, keys upper-cased with dots replaced by underscores,
// prefixed for the env source to read back.
func (s *Store) ExportEnv(cfg *types.SystemConfiguration, prefix string) ([]byte, error) {
	if prefix == "" {
		prefix = "HOOK_CONFIG_"
	}

	flat := Flatten(cfg.Document())

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		envKey := prefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		fmt.Fprintf(&b, "%s=%s\n", envKey, flat[key])
	}
	return []byte(b.String()), nil
}

// Flatten renders a document as dot-path keys with scalar string values.
func Flatten(doc types.Document) map[string]string {
	flat := make(map[string]string)
	flattenInto(flat, "", doc)
	return flat
}

func flattenInto(out map[string]string, prefix string, value interface{}) {
	switch v := value.(type) {
	case map[string]interface{}:
		for key, child := range v {
			path := key
			if prefix != "" {
				path = prefix + "." + key
			}
			flattenInto(out, path, child)
		}
	default:
		out[prefix] = renderScalar(v)
	}
}

func renderScalar(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}
