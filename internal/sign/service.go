package sign

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Service exposes the signing session as request/result operations for the
// tool surface. It owns exactly one session; resetting the session starts
// the next document.
type Service struct {
	maxFileSize int64
	session     *Session
}

// NewService creates a signing service.
func NewService(maxFileSize, maxUploadSize int64) *Service {
	return &Service{
		maxFileSize: maxFileSize,
		session:     NewSession(NewInspector(maxFileSize), maxUploadSize),
	}
}

// Session returns the underlying session for orchestration outside the
// request/result surface (remote submission, tests).
func (s *Service) Session() *Session {
	return s.session
}

// LoadDocument reads a PDF from disk into the session.
func (s *Service) LoadDocument(req LoadDocumentRequest) (*LoadDocumentResult, error) {
	if req.Path == "" {
		return nil, newValidationError("path cannot be empty")
	}
	if !strings.HasSuffix(strings.ToLower(req.Path), ".pdf") {
		return nil, newValidationError("file is not a PDF: %s", req.Path)
	}
	data, err := os.ReadFile(req.Path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file %s: %w", req.Path, err)
	}
	doc, err := s.session.LoadDocument(filepath.Base(req.Path), data)
	if err != nil {
		return nil, err
	}
	return &LoadDocumentResult{
		Document: *doc,
		Step:     s.session.CurrentStep().String(),
	}, nil
}

// Status reports the workflow position and signing progress.
func (s *Service) Status() *StatusResult {
	result := &StatusResult{
		Step:        s.session.CurrentStep().String(),
		StepNumber:  s.session.CurrentStep().Number(),
		FieldCount:  s.session.Registry.Len(),
		SignedCount: s.session.Store.Len(),
		Ready:       s.session.Ready(),
	}
	if doc := s.session.Document(); doc != nil {
		result.Document = doc.Name
		result.PageCount = doc.PageCount
	}
	return result
}

// NextStep advances the workflow.
func (s *Service) NextStep() (*StatusResult, error) {
	if err := s.session.Next(); err != nil {
		return nil, err
	}
	return s.Status(), nil
}

// PrevStep moves the workflow backward without discarding state.
func (s *Service) PrevStep() (*StatusResult, error) {
	if err := s.session.Back(); err != nil {
		return nil, err
	}
	return s.Status(), nil
}

// AddField commits a field rectangle during the prepare step.
func (s *Service) AddField(req AddFieldRequest) (*AddFieldResult, error) {
	if s.session.CurrentStep() != StepPrepare {
		return nil, newValidationError("fields can only be placed during the prepare step")
	}
	ft, err := ParseFieldType(req.Type)
	if err != nil {
		return nil, err
	}
	doc := s.session.Document()
	if req.PageNumber < 1 || req.PageNumber > doc.PageCount {
		return nil, newValidationError("page %d out of range (document has %d pages)",
			req.PageNumber, doc.PageCount)
	}
	field, err := s.session.Registry.AddField(req.PageNumber,
		Rect{X: req.X, Y: req.Y, Width: req.Width, Height: req.Height}, ft, !req.Optional)
	if err != nil {
		return nil, err
	}
	return &AddFieldResult{Field: field}, nil
}

// MoveField repositions a field.
func (s *Service) MoveField(req MoveFieldRequest) (*AddFieldResult, error) {
	if err := s.session.Registry.MoveField(req.ID, req.X, req.Y); err != nil {
		return nil, err
	}
	field, _ := s.session.Registry.Field(req.ID)
	return &AddFieldResult{Field: field}, nil
}

// ResizeField replaces a field's rectangle.
func (s *Service) ResizeField(req ResizeFieldRequest) (*AddFieldResult, error) {
	rect := Rect{X: req.X, Y: req.Y, Width: req.Width, Height: req.Height}
	if err := s.session.Registry.ResizeField(req.ID, rect); err != nil {
		return nil, err
	}
	field, _ := s.session.Registry.Field(req.ID)
	return &AddFieldResult{Field: field}, nil
}

// RemoveField deletes a field and its signing value.
func (s *Service) RemoveField(req RemoveFieldRequest) error {
	return s.session.Registry.RemoveField(req.ID)
}

// ListFields returns fields, optionally restricted to one page.
func (s *Service) ListFields(req ListFieldsRequest) *ListFieldsResult {
	var fields []Field
	if req.PageNumber > 0 {
		fields = s.session.Registry.FieldsForPage(req.PageNumber)
	} else {
		fields = s.session.Registry.Fields()
	}
	signed := make(map[string]bool, len(fields))
	for _, f := range fields {
		signed[f.ID] = s.session.Store.Has(f.ID)
	}
	return &ListFieldsResult{Fields: fields, Signed: signed}
}

// NormalizedFields builds the submission payload field list.
func (s *Service) NormalizedFields() ([]NormalizedField, error) {
	return s.session.NormalizedFields()
}

func (s *Service) requireSignStep() error {
	if s.session.CurrentStep() != StepSign {
		return newValidationError("signing is only available at the sign step")
	}
	return nil
}

// CaptureDraw applies a drawn signature to a field.
func (s *Service) CaptureDraw(req CaptureDrawRequest) (*SignFieldResult, error) {
	if err := s.requireSignStep(); err != nil {
		return nil, err
	}
	if err := s.session.Capture.ApplyDraw(req.FieldID, req.Strokes); err != nil {
		return nil, err
	}
	return &SignFieldResult{FieldID: req.FieldID, Ready: s.session.Ready()}, nil
}

// CaptureType applies a typed signature to a field.
func (s *Service) CaptureType(req CaptureTypeRequest) (*SignFieldResult, error) {
	if err := s.requireSignStep(); err != nil {
		return nil, err
	}
	if err := s.session.Capture.ApplyType(req.FieldID, req.Text); err != nil {
		return nil, err
	}
	return &SignFieldResult{FieldID: req.FieldID, Ready: s.session.Ready()}, nil
}

// CaptureUpload applies an uploaded signature image to a field.
func (s *Service) CaptureUpload(req CaptureUploadRequest) (*SignFieldResult, error) {
	if err := s.requireSignStep(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(req.Path)
	if err != nil {
		return nil, newValidationError("cannot read image %s: %v", req.Path, err)
	}
	if err := s.session.Capture.ApplyUpload(req.FieldID, data, ""); err != nil {
		return nil, err
	}
	return &SignFieldResult{FieldID: req.FieldID, Ready: s.session.Ready()}, nil
}

// SignField fills a read-only field: dates auto-fill with today, name fields
// with the given signer name. Capture-type fields are refused with guidance.
func (s *Service) SignField(fieldID, signerName string) (*SignFieldResult, error) {
	if err := s.requireSignStep(); err != nil {
		return nil, err
	}
	field, ok := s.session.Registry.Field(fieldID)
	if !ok {
		return nil, &NotFoundError{ID: fieldID}
	}
	var err error
	switch field.Type {
	case FieldDate:
		err = s.session.Capture.AutoFillDate(fieldID)
	case FieldText:
		err = s.session.Capture.AutoFillName(fieldID, signerName)
	default:
		err = newValidationError("%s fields need a drawn, typed or uploaded signature", field.Type)
	}
	if err != nil {
		return nil, err
	}
	return &SignFieldResult{FieldID: fieldID, Ready: s.session.Ready()}, nil
}

// FinalizeLocal composites the signed document and writes it next to the
// requested output path (or the suggested filename in the working directory
// when the path is empty). The session resets only once the file is on disk;
// a failed write leaves everything in place for a retry.
func (s *Service) FinalizeLocal(req FinalizeLocalRequest) (*FinalizeLocalResult, error) {
	doc := s.session.Document()
	if doc == nil {
		return nil, newValidationError("no document loaded")
	}
	filename, out, err := s.session.FinalizeLocal()
	if err != nil {
		return nil, err
	}
	path := req.OutputPath
	if path == "" {
		path = filename
	} else if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		path = filepath.Join(path, filename)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return nil, fmt.Errorf("cannot write signed document: %w", err)
	}
	s.session.CompleteFinalize()
	return &FinalizeLocalResult{Path: path, Filename: filename, Size: len(out)}, nil
}
