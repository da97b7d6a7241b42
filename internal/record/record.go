// Package record holds the wire-level data model shared by every table
// view: opaque server-owned records, ordered collections, and the
// five-state run status machine.
package record

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Record is one server-owned data item (task, run, log line,
// notification). Only the "id" field is interpreted by the client;
// everything else is domain data passed through to the views. The
// field set is the union of all payloads seen for that id — the server
// may send partial updates.
type Record map[string]any

// Collection is an ordered list of Records as returned by a list
// endpoint. Order reflects the server-declared sort.
type Collection []Record

// ID returns the record's stable identity as a string. JSON numbers
// decode as float64, so numeric ids are normalized. Returns "" when
// the id field is missing or of an unusable type.
func (r Record) ID() string {
	switch v := r["id"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// String returns the named field rendered as a string, or "" when
// absent.
func (r Record) String(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		// Render integral floats without the trailing ".0" JSON gives us.
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Bool returns the named field as a bool. Missing or non-bool fields
// report ok=false.
func (r Record) Bool(field string) (value, ok bool) {
	v, isBool := r[field].(bool)
	return v, isBool
}

// Status returns the record's work status parsed from the "status"
// field. Records without a status field report StatusNone.
func (r Record) Status() WorkStatus {
	s, ok := r["status"].(string)
	if !ok || s == "" {
		return StatusNone
	}
	return WorkStatus(s)
}

// Merge returns a copy of r with the fields of upd layered on top.
// Fields absent from upd are retained, so partial updates never erase
// previously known data.
func (r Record) Merge(upd Record) Record {
	out := make(Record, len(r)+len(upd))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range upd {
		out[k] = v
	}
	return out
}

// Equal reports whether two records carry the same fields and values.
// Values are compared through their JSON encoding, which is the only
// form the client ever observes them in.
func (r Record) Equal(other Record) bool {
	if len(r) != len(other) {
		return false
	}
	a, err := json.Marshal(map[string]any(r))
	if err != nil {
		return false
	}
	b, err := json.Marshal(map[string]any(other))
	if err != nil {
		return false
	}
	return string(a) == string(b)
}
