package sign

// Step identifies the current stage of the signing workflow.
type Step int

const (
	StepIdle Step = iota
	StepUpload
	StepPrepare
	StepDeliver
	StepSign
)

// String returns the user-facing step label.
func (s Step) String() string {
	switch s {
	case StepUpload:
		return "upload"
	case StepPrepare:
		return "prepare"
	case StepDeliver:
		return "deliver"
	case StepSign:
		return "sign"
	default:
		return "idle"
	}
}

// Number returns the 1-based step number shown in the workflow, 0 for idle.
func (s Step) Number() int {
	return int(s)
}

// Session owns all state for one document-signing workflow: the loaded
// document, the field registry, the signing store and the current step.
// It is explicitly passed to consumers rather than held as package state.
// All operations are synchronous; nothing in the session spawns concurrent
// work against the registry or store.
type Session struct {
	inspector  *Inspector
	compositor *Compositor

	step Step
	doc  *DocumentInfo
	data []byte

	Registry *Registry
	Store    *Store
	Capture  *Capture
}

// NewSession creates an idle session.
func NewSession(inspector *Inspector, maxUploadSize int64) *Session {
	store := NewStore()
	registry := NewRegistry(store)
	return &Session{
		inspector:  inspector,
		compositor: NewCompositor(),
		step:       StepIdle,
		Registry:   registry,
		Store:      store,
		Capture:    NewCapture(registry, store, maxUploadSize),
	}
}

// CurrentStep returns the current workflow step.
func (s *Session) CurrentStep() Step {
	return s.step
}

// Document returns the loaded document info, nil when idle.
func (s *Session) Document() *DocumentInfo {
	return s.doc
}

// DocumentBytes returns the original PDF bytes.
func (s *Session) DocumentBytes() []byte {
	return s.data
}

// LoadDocument validates and loads a PDF, moving the session to the upload
// step. Replacing an already-selected file restarts the session.
func (s *Session) LoadDocument(name string, data []byte) (*DocumentInfo, error) {
	if s.step > StepUpload {
		return nil, newValidationError("a signing session is already in progress")
	}
	doc, err := s.inspector.Inspect(name, data)
	if err != nil {
		return nil, err
	}
	s.doc = doc
	s.data = data
	s.step = StepUpload
	s.Registry.Clear()
	s.Store.Clear()
	return doc, nil
}

// ClearDocument drops the selected file and returns the session to idle.
func (s *Session) ClearDocument() {
	s.Reset()
}

// Next advances one step. Each forward transition has a guard; a refused
// transition returns a ValidationError and leaves the step unchanged.
// Advancing from the delivery step selects the local signing path; the
// remote path leaves via MarkRemoteSubmitted instead.
func (s *Session) Next() error {
	switch s.step {
	case StepIdle:
		return newValidationError("no document loaded")
	case StepUpload:
		if s.doc == nil {
			return newValidationError("select a PDF file first")
		}
		s.step = StepPrepare
	case StepPrepare:
		if s.Registry.Len() == 0 {
			return newValidationError("place at least one field before continuing")
		}
		s.step = StepDeliver
	case StepDeliver:
		s.step = StepSign
	case StepSign:
		return newValidationError("already at the signing step; finalize instead")
	}
	return nil
}

// Back moves one step backward. Always permitted down to the upload step and
// never discards registry or store contents.
func (s *Session) Back() error {
	if s.step <= StepUpload {
		return newValidationError("cannot go back from %s", s.step)
	}
	s.step--
	return nil
}

// Ready reports whether the document can be finalized: fields exist and
// every required one is signed.
func (s *Session) Ready() bool {
	return s.Store.DocumentReady(s.Registry.Fields())
}

// NormalizedFields produces the submission payload field list.
func (s *Session) NormalizedFields() ([]NormalizedField, error) {
	return s.Registry.Normalized(s.doc)
}

// SignedValues returns the captured values keyed by normalized field name,
// ready for remote value submission: images as base64 data URLs, text values
// as plain strings. Unsigned fields are omitted.
func (s *Session) SignedValues() (map[string]string, error) {
	normalized, err := s.Registry.Normalized(s.doc)
	if err != nil {
		return nil, err
	}
	fields := s.Registry.Fields()
	out := make(map[string]string, len(fields))
	for i, f := range fields {
		if v, ok := s.Store.Get(f.ID); ok {
			out[normalized[i].Name] = v.DataURL()
		}
	}
	return out, nil
}

// FinalizeLocal composites every satisfied field into the document and
// returns the suggested filename and output bytes. The session stays at the
// signing step until CompleteFinalize: a failure while saving the output is
// recoverable and must not cost the user their fields and signatures.
func (s *Session) FinalizeLocal() (string, []byte, error) {
	if s.step != StepSign {
		return "", nil, newValidationError("finalize is only available at the signing step")
	}
	if !s.Ready() {
		return "", nil, newValidationError("all required fields must be signed first")
	}
	out, err := s.compositor.Compose(s.data, s.Registry.Fields(), s.Store.Snapshot(), s.doc.Pages)
	if err != nil {
		return "", nil, err
	}
	return "signed_" + s.doc.Name, out, nil
}

// CompleteFinalize records that the composed document reached durable
// storage and resets the session for the next document. Called by the
// service only after the output file is written.
func (s *Session) CompleteFinalize() {
	s.Reset()
}

// MarkRemoteSubmitted records a successful remote submission and resets the
// session. Called by the orchestrator after the submission API accepts.
func (s *Session) MarkRemoteSubmitted() {
	s.Reset()
}

// Reset discards the field registry, signing store and loaded file.
func (s *Session) Reset() {
	s.Registry.Clear()
	s.Store.Clear()
	s.doc = nil
	s.data = nil
	s.step = StepIdle
}
