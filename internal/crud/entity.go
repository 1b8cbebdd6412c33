// Package crud implements the generic resource registry: one in-memory,
// insertion-ordered entity store per resource name ("klanten", "offertes",
// ...), each assigning ids and timestamps on behalf of its callers.
package crud

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"
)

// Reserved field names owned by the store. Caller input never sets them.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Entity is a stored record: an envelope owned by the store plus an open set
// of caller fields. On the wire the two are flattened into one JSON object.
type Entity struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Fields    map[string]any
}

// MarshalJSON flattens the envelope and the fields into a single object.
func (e Entity) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Fields)+3)
	maps.Copy(out, e.Fields)
	out[FieldID] = e.ID
	out[FieldCreatedAt] = e.CreatedAt
	out[FieldUpdatedAt] = e.UpdatedAt
	return json.Marshal(out)
}

// UnmarshalJSON reads a flattened object. It is used when loading admin
// state; request bodies go through the router's narrowing instead.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, _ := raw[FieldID].(string)
	if id == "" {
		return fmt.Errorf("entity: missing %q", FieldID)
	}
	created, err := parseTime(raw[FieldCreatedAt])
	if err != nil {
		return fmt.Errorf("entity %s: %s: %w", id, FieldCreatedAt, err)
	}
	updated, err := parseTime(raw[FieldUpdatedAt])
	if err != nil {
		return fmt.Errorf("entity %s: %s: %w", id, FieldUpdatedAt, err)
	}
	if updated.Before(created) {
		updated = created
	}
	*e = Entity{ID: id, CreatedAt: created, UpdatedAt: updated, Fields: userFields(raw)}
	return nil
}

// Field returns a caller field by name.
func (e Entity) Field(name string) (any, bool) {
	v, ok := e.Fields[name]
	return v, ok
}

func (e Entity) clone() Entity {
	e.Fields = maps.Clone(e.Fields)
	if e.Fields == nil {
		e.Fields = map[string]any{}
	}
	return e
}

// userFields copies in without the reserved envelope keys.
func userFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch k {
		case FieldID, FieldCreatedAt, FieldUpdatedAt:
			continue
		}
		out[k] = v
	}
	return out
}

func parseTime(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, fmt.Errorf("expected RFC 3339 timestamp")
	}
	return time.Parse(time.RFC3339Nano, s)
}
