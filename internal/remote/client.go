// Package remote talks to the external e-signature submission API and the
// mail relay. It carries no signing logic; its job is shaping the payloads
// and surfacing failures as RemoteErrors so the session can be retried
// without losing local state.
package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docsign/mcp-pdf-sign/internal/sign"
)

const (
	submissionsPath = "/documentSubmissions/pdf?include=fields"
	mailPath        = "/reviewandsigndocument"
	submitterRole   = "Signer"

	defaultTimeout = 30 * time.Second
)

// Config holds the endpoints and credentials for the external APIs.
type Config struct {
	BaseURL string
	APIKey  string
	MailURL string
	Timeout time.Duration
}

// Client is the HTTP client for the submission and mail APIs.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a client. A zero-value BaseURL produces an unconfigured
// client; callers check Configured before the remote delivery path.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a submission endpoint is set.
func (c *Client) Configured() bool {
	return c.cfg.BaseURL != ""
}

// SubmissionRequest is the input for creating a remote signing submission.
type SubmissionRequest struct {
	Name         string
	DocumentName string
	PDF          []byte
	Fields       []sign.NormalizedField
	Email        string
}

type documentPayload struct {
	Name   string                 `json:"name"`
	Role   string                 `json:"role"`
	File   string                 `json:"file"`
	Fields []sign.NormalizedField `json:"fields"`
}

type submitterPayload struct {
	Role  string `json:"role"`
	Email string `json:"email"`
}

type submissionPayload struct {
	Name       string             `json:"name"`
	Documents  []documentPayload  `json:"documents"`
	Submitters []submitterPayload `json:"submitters"`
}

// Submitter is one signer on a created submission. EmbedSrc is the hosted
// signing URL mailed to the signer.
type Submitter struct {
	ID       int64  `json:"id"`
	Role     string `json:"role"`
	Email    string `json:"email"`
	EmbedSrc string `json:"embed_src"`
}

// Submission is the record returned by the submission API.
type Submission struct {
	ID         int64       `json:"id"`
	Submitters []Submitter `json:"submitters"`
}

// SubmitDocument creates a signing submission for one document and one
// signer. Validation failures are caught locally before any network call.
func (c *Client) SubmitDocument(ctx context.Context, req SubmissionRequest) (*Submission, error) {
	if req.Email == "" {
		return nil, &sign.ValidationError{Msg: "email is required"}
	}
	if len(req.PDF) == 0 {
		return nil, &sign.ValidationError{Msg: "PDF file is required"}
	}
	if len(req.Fields) == 0 {
		return nil, &sign.ValidationError{Msg: "at least one field is required"}
	}

	name := req.Name
	if name == "" {
		name = "Submission Document"
	}
	payload := submissionPayload{
		Name: name,
		Documents: []documentPayload{{
			Name:   req.DocumentName,
			Role:   submitterRole,
			File:   base64.StdEncoding.EncodeToString(req.PDF),
			Fields: req.Fields,
		}},
		Submitters: []submitterPayload{{Role: submitterRole, Email: req.Email}},
	}

	var submission Submission
	if err := c.post(ctx, "submit document", c.cfg.BaseURL+submissionsPath, payload, &submission); err != nil {
		return nil, err
	}
	return &submission, nil
}

// EmbedSrc returns the signing URL for the first submitter.
func (s *Submission) EmbedSrc() string {
	if len(s.Submitters) == 0 {
		return ""
	}
	return s.Submitters[0].EmbedSrc
}

// SubmitValues posts captured field values for a submitter, marking the
// submission completed by default.
func (c *Client) SubmitValues(ctx context.Context, submitterID int64, values map[string]string, completed bool) error {
	if submitterID == 0 {
		return &sign.ValidationError{Msg: "submitter id is required"}
	}
	payload := struct {
		Values    map[string]string `json:"values"`
		Completed bool              `json:"completed"`
	}{Values: values, Completed: completed}

	url := fmt.Sprintf("%s/submitters/%d", c.cfg.BaseURL, submitterID)
	return c.post(ctx, "submit values", url, payload, nil)
}

// SendMailLink delivers the rendered signing email. The token is the full
// HTML body with the embed link already interpolated.
func (c *Client) SendMailLink(ctx context.Context, to, token string) error {
	if to == "" {
		return &sign.ValidationError{Msg: "recipient email is required"}
	}
	url := c.cfg.MailURL
	if url == "" {
		url = c.cfg.BaseURL + mailPath
	}
	payload := struct {
		To    string `json:"to"`
		Token string `json:"token"`
	}{To: to, Token: token}
	return c.post(ctx, "send mail link", url, payload, nil)
}

func (c *Client) post(ctx context.Context, op, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return sign.NewRemoteError(op, 0, fmt.Errorf("failed to encode payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return sign.NewRemoteError(op, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("X-Auth-Token", c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return sign.NewRemoteError(op, 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return sign.NewRemoteError(op, resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return sign.NewRemoteError(op, resp.StatusCode, fmt.Errorf("%s", apiErrorMessage(data)))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return sign.NewRemoteError(op, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
		}
	}
	return nil
}

// apiErrorMessage pulls the error field out of an API error body, falling
// back to the raw body.
func apiErrorMessage(body []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		return parsed.Error
	}
	msg := string(bytes.TrimSpace(body))
	if msg == "" {
		return "request rejected"
	}
	return msg
}
