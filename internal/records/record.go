package records

import "fmt"

// Record is a patient document. No schema is enforced: name and condition may
// live in nested objects ("patient.name", "diagnosis.condition") or flat fields.
type Record map[string]interface{}

// PatientID returns the patient_id field, if any
func (r Record) PatientID() string {
	return stringValue(r["patient_id"])
}

// DisplayName resolves patient.name, then name, then fallback
func (r Record) DisplayName(fallback string) string {
	if v, ok := r.lookup("patient", "name"); ok {
		return v
	}
	if v, ok := r.lookup("name"); ok {
		return v
	}
	return fallback
}

// Condition resolves diagnosis.condition, then condition, then fallback
func (r Record) Condition(fallback string) string {
	if v, ok := r.lookup("diagnosis", "condition"); ok {
		return v
	}
	if v, ok := r.lookup("condition"); ok {
		return v
	}
	return fallback
}

// lookup stringifies the leaf at path. Missing or null leaves report false.
func (r Record) lookup(path ...string) (string, bool) {
	v, ok := r.field(path...)
	if !ok || v == nil {
		return "", false
	}
	return stringValue(v), true
}

// stringLeaves returns the string values found at each path, in path order
func (r Record) stringLeaves(paths ...[]string) []string {
	var out []string
	for _, path := range paths {
		if v, ok := r.field(path...); ok {
			if s, isString := v.(string); isString {
				out = append(out, s)
			}
		}
	}
	return out
}

func (r Record) field(path ...string) (interface{}, bool) {
	var cur interface{} = map[string]interface{}(r)
	for _, key := range path {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case Record:
		return m, true
	}
	return nil, false
}

func stringValue(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

var (
	namePaths      = [][]string{{"patient", "name"}, {"name"}}
	conditionPaths = [][]string{{"diagnosis", "condition"}, {"condition"}}
)
