package batch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	"codeberg.org/snonux/agritranslate/internal/translation"
)

// Entry is one key/text pair of a dictionary
type Entry struct {
	Key  string
	Text string
}

// Dictionary is a string dictionary that keeps the document order of its keys
type Dictionary struct {
	keys   []string
	values map[string]string
}

// NewDictionary creates an empty dictionary
func NewDictionary() *Dictionary {
	return &Dictionary{values: make(map[string]string)}
}

// Set stores value under key. A key that already exists keeps its position.
func (d *Dictionary) Set(key, value string) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Len returns the number of keys
func (d *Dictionary) Len() int {
	return len(d.keys)
}

// Entries returns the entries in order
func (d *Dictionary) Entries() []Entry {
	out := make([]Entry, len(d.keys))
	for i, k := range d.keys {
		out[i] = Entry{Key: k, Text: d.values[k]}
	}
	return out
}

// ParseDictionary decodes a JSON object of string values, keeping key order.
// Anything else is translation.ErrMalformedInput.
func ParseDictionary(data []byte) (*Dictionary, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", translation.ErrMalformedInput)
	}
	return FromResult(gjson.ParseBytes(data))
}

// FromResult builds a dictionary from a parsed JSON object
func FromResult(obj gjson.Result) (*Dictionary, error) {
	if !obj.IsObject() {
		return nil, fmt.Errorf("%w: expected a JSON object", translation.ErrMalformedInput)
	}

	d := NewDictionary()
	var err error
	obj.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.String {
			err = fmt.Errorf("%w: value of %q is not a string", translation.ErrMalformedInput, key.String())
			return false
		}
		d.Set(key.String(), value.String())
		return true
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// LoadDictionary reads and parses the dictionary at path
func LoadDictionary(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}

	d, err := ParseDictionary(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// MarshalJSON encodes the dictionary as a compact JSON object in key order
func (d *Dictionary) MarshalJSON() ([]byte, error) {
	return d.encode("", "")
}

// Indent encodes the dictionary as a JSON object indented by two spaces.
// Non-ASCII text is written literally.
func (d *Dictionary) Indent() ([]byte, error) {
	return d.encode("\n  ", "\n")
}

func (d *Dictionary) encode(entryPrefix, closing string) ([]byte, error) {
	if len(d.keys) == 0 {
		return []byte("{}"), nil
	}

	sep := ":"
	if entryPrefix != "" {
		sep = ": "
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(entryPrefix)

		key, err := encodeString(k)
		if err != nil {
			return nil, err
		}
		value, err := encodeString(d.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteString(sep)
		buf.Write(value)
	}
	buf.WriteString(closing)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Save writes the dictionary to path, creating parent directories. The file
// is written to a temporary name first so a crash never leaves it half written.
func (d *Dictionary) Save(path string) error {
	data, err := d.Indent()
	if err != nil {
		return fmt.Errorf("failed to encode dictionary: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".dictionary-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write dictionary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write dictionary: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save dictionary: %w", err)
	}
	return nil
}
