package prefs

import (
	"encoding/json"

	"github.com/kettle/taskdeck/internal/record"
)

const columnsVisibleKey = "custom_columns_visible"

// State is a view's saved display state. Column visibility is the
// field taskdeck interprets; everything else in the blob (saved page,
// sort order, search text) is carried through opaquely so that
// toggling one column never discards state written by a newer build.
type State struct {
	// ColumnsVisible maps column data source to the user's explicit
	// choice. Columns absent from the map follow the schema default.
	ColumnsVisible map[string]bool

	extra map[string]json.RawMessage
}

func NewState() State {
	return State{
		ColumnsVisible: map[string]bool{},
		extra:          map[string]json.RawMessage{},
	}
}

// ParseState decodes a stored blob. Malformed input yields the empty
// state rather than an error.
func ParseState(blob []byte) State {
	st := NewState()
	if len(blob) == 0 {
		return st
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(blob, &raw); err != nil {
		return NewState()
	}
	for key, val := range raw {
		if key != columnsVisibleKey {
			st.extra[key] = val
			continue
		}
		var cols map[string]bool
		if err := json.Unmarshal(val, &cols); err != nil {
			continue
		}
		st.ColumnsVisible = cols
	}
	return st
}

func (s State) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(s.extra)+1)
	for key, val := range s.extra {
		out[key] = val
	}
	cols, err := json.Marshal(s.ColumnsVisible)
	if err != nil {
		return nil, err
	}
	out[columnsVisibleKey] = cols
	return json.Marshal(out)
}

// Extra returns an opaque field carried through from the stored blob.
func (s State) Extra(key string) (json.RawMessage, bool) {
	val, ok := s.extra[key]
	return val, ok
}

// SetExtra stores an opaque field to be persisted alongside the
// interpreted ones.
func (s *State) SetExtra(key string, val json.RawMessage) {
	if s.extra == nil {
		s.extra = map[string]json.RawMessage{}
	}
	s.extra[key] = val
}

// Resolve merges saved visibility choices over schema defaults. Every
// schema column gets an entry; saved choices for columns the schema no
// longer has are dropped.
func Resolve(st State, schema record.Schema) map[string]bool {
	out := make(map[string]bool, len(schema))
	for _, col := range schema {
		if choice, ok := st.ColumnsVisible[col.DataSource]; ok {
			out[col.DataSource] = choice
			continue
		}
		out[col.DataSource] = col.DefaultVisible
	}
	return out
}
