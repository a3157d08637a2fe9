package recipe

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Entry is a keyed recipe of the local dataset.
type Entry struct {
	Key    string
	Recipe LocalRecipe
}

// Dataset is the read-only local recipe collection. Entries keep the order
// in which they were loaded and Match scans them in that order.
type Dataset struct {
	entries []Entry
}

// NewDataset builds a dataset from entries. A repeated key replaces the
// earlier value but keeps its original position.
func NewDataset(entries ...Entry) *Dataset {
	d := &Dataset{}
	index := make(map[string]int, len(entries))
	for _, e := range entries {
		if i, ok := index[e.Key]; ok {
			d.entries[i] = e
			continue
		}
		index[e.Key] = len(d.entries)
		d.entries = append(d.entries, e)
	}
	return d
}

// LoadDataset decodes a JSON object of key -> recipe, preserving key order.
func LoadDataset(r io.Reader) (*Dataset, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read recipes: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("recipes must be a JSON object, got %v", tok)
	}

	var entries []Entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read recipe key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected recipe key %v", tok)
		}
		var lr LocalRecipe
		if err := dec.Decode(&lr); err != nil {
			return nil, fmt.Errorf("failed to decode recipe %q: %w", key, err)
		}
		entries = append(entries, Entry{Key: key, Recipe: lr})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to read recipes: %w", err)
	}

	return NewDataset(entries...), nil
}

// LoadDatasetFile reads the dataset from a JSON file.
func LoadDatasetFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recipes file: %w", err)
	}
	defer f.Close()
	return LoadDataset(f)
}

// Match returns the first entry whose key contains dish or is contained in
// it. Short keys can match unrelated dishes ("egg" matches "eggplant
// parmesan"); the scan order decides which one wins.
func (d *Dataset) Match(dish string) (Entry, bool) {
	for _, e := range d.entries {
		if strings.Contains(dish, e.Key) || strings.Contains(e.Key, dish) {
			return e, true
		}
	}
	return Entry{}, false
}

// Keys returns the dataset keys in scan order.
func (d *Dataset) Keys() []string {
	keys := make([]string, len(d.entries))
	for i, e := range d.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the entries in scan order.
func (d *Dataset) Entries() []Entry {
	return append([]Entry(nil), d.entries...)
}

// Len returns the number of entries.
func (d *Dataset) Len() int {
	return len(d.entries)
}
