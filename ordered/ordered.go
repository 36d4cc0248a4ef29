// Package ordered decodes JSON objects into string pairs while keeping the key order of the source.
package ordered

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Pair is one key/value entry of a Map.
type Pair struct {
	Key   string
	Value string
}

// Map is a JSON object whose entries keep their document order.
// Non-string values are kept as their compact JSON text.
type Map []Pair

// Get returns the value stored under key and whether it exists.
func (m Map) Get(key string) (string, bool) {
	for _, p := range m {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Keys returns the keys in order.
func (m Map) Keys() []string {
	keys := make([]string, len(m))
	for i, p := range m {
		keys[i] = p.Key
	}
	return keys
}

func (m *Map) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}

	om := orderedmap.New[string, json.RawMessage]()
	if err := om.UnmarshalJSON(data); err != nil {
		return err
	}

	out := make(Map, 0, om.Len())
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		value, err := rawToString(pair.Value)
		if err != nil {
			return err
		}
		out = append(out, Pair{Key: pair.Key, Value: value})
	}

	*m = out
	return nil
}

func (m Map) MarshalJSON() ([]byte, error) {
	om := orderedmap.New[string, string](orderedmap.WithCapacity[string, string](len(m)))
	for _, p := range m {
		om.Set(p.Key, p.Value)
	}
	return om.MarshalJSON()
}

func rawToString(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return "", err
	}
	return compact.String(), nil
}
