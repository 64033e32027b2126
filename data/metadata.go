package data

import (
	"maps"
	"slices"
)

// Well known metadata keys.
const (
	// MIME type
	MetadataContentType = "content-type"
	// Content checksum
	MetadataChecksum = "checksum"
	// Version number or string
	MetadataVersion = "version"
)

// Metadata is a key/value record that inherits unset keys from a parent record.
// Nodes of a shadowed file system chain their records to the record of the
// corresponding node in the shadow root.
type Metadata struct {
	parent  *Metadata
	values  map[string]any
	deleted map[string]struct{}
}

// NewMetadata returns an empty record whose lookups fall through to parent.
func NewMetadata(parent *Metadata) *Metadata {
	return &Metadata{parent: parent}
}

// Parent returns the record this one inherits from, or nil.
func (m *Metadata) Parent() *Metadata {
	return m.parent
}

// Get returns the value for key, walking the parent chain.
func (m *Metadata) Get(key string) (any, bool) {
	for r := m; r != nil; r = r.parent {
		if v, ok := r.values[key]; ok {
			return v, true
		}
		if _, ok := r.deleted[key]; ok {
			return nil, false
		}
	}
	return nil, false
}

// GetString returns the value for key when it is a string, or defaultValue.
func (m *Metadata) GetString(key, defaultValue string) string {
	if v, ok := m.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return defaultValue
}

// Has reports whether key resolves to a value somewhere in the chain.
func (m *Metadata) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// HasOwn reports whether key is set on this record itself.
func (m *Metadata) HasOwn(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Set stores value for key on this record only.
func (m *Metadata) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	m.values[key] = value
	delete(m.deleted, key)
}

// Delete removes key from this record. A value inherited from a parent
// is masked so that Get no longer sees it.
func (m *Metadata) Delete(key string) {
	delete(m.values, key)
	if m.parent != nil && m.parent.Has(key) {
		if m.deleted == nil {
			m.deleted = make(map[string]struct{})
		}
		m.deleted[key] = struct{}{}
	}
}

// Keys returns every key visible through the chain, sorted.
func (m *Metadata) Keys() []string {
	return slices.Sorted(maps.Keys(m.Flatten()))
}

// Flatten returns the effective key/value view of the chain.
func (m *Metadata) Flatten() map[string]any {
	var chain []*Metadata
	for r := m; r != nil; r = r.parent {
		chain = append(chain, r)
	}

	out := make(map[string]any)
	for i := len(chain) - 1; i >= 0; i-- {
		r := chain[i]
		for k := range r.deleted {
			delete(out, k)
		}
		maps.Copy(out, r.values)
	}
	return out
}
