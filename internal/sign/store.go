package sign

// Store maps field ids to captured signing values. It is independently
// addressable from the Registry; consistency between the two (no orphaned
// values after a field is removed) is enforced by the Registry's cascade
// delete.
type Store struct {
	values map[string]Value
}

// NewStore creates an empty signing store.
func NewStore() *Store {
	return &Store{values: make(map[string]Value)}
}

// Set records the signing value for a field id, replacing any prior value.
func (s *Store) Set(fieldID string, v Value) {
	s.values[fieldID] = v
}

// Get returns the stored value and whether one exists.
func (s *Store) Get(fieldID string) (Value, bool) {
	v, ok := s.values[fieldID]
	return v, ok
}

// Has reports whether the field has been signed.
func (s *Store) Has(fieldID string) bool {
	_, ok := s.values[fieldID]
	return ok
}

// Delete removes the value for a field id. Deleting an absent id is a no-op.
func (s *Store) Delete(fieldID string) {
	delete(s.values, fieldID)
}

// Clear empties the store. Used on session reset.
func (s *Store) Clear() {
	s.values = make(map[string]Value)
}

// Len returns the number of stored values.
func (s *Store) Len() int {
	return len(s.values)
}

// AllRequiredSatisfied reports whether every required field in the given
// list has a stored value. It is vacuously true when no field is required.
func (s *Store) AllRequiredSatisfied(fields []Field) bool {
	for _, f := range fields {
		if f.Required && !s.Has(f.ID) {
			return false
		}
	}
	return true
}

// DocumentReady reports whether the document can be finalized: at least one
// field exists and every required one is satisfied. An empty field list is
// never ready.
func (s *Store) DocumentReady(fields []Field) bool {
	return len(fields) > 0 && s.AllRequiredSatisfied(fields)
}

// Snapshot returns a copy of the current values, suitable for handing to the
// compositor without further mutation hazards.
func (s *Store) Snapshot() map[string]Value {
	out := make(map[string]Value, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
