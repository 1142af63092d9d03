package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/docsign/mcp-pdf-sign/internal/config"
	"github.com/docsign/mcp-pdf-sign/internal/remote"
	"github.com/docsign/mcp-pdf-sign/internal/sign"
)

// Server represents the MCP server instance
type Server struct {
	config       *config.Config
	signService  *sign.Service
	remoteClient *remote.Client
	mcpServer    *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, signService *sign.Service, remoteClient *remote.Client) (*Server, error) {
	if signService == nil {
		return nil, fmt.Errorf("signService cannot be nil")
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:       cfg,
		signService:  signService,
		remoteClient: remoteClient,
		mcpServer:    mcpServer,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	loadDocumentTool := mcp.NewTool(
		"sign_load_document",
		mcp.WithDescription("Load a PDF file into a new signing session"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(loadDocumentTool, s.handleLoadDocument)

	statusTool := mcp.NewTool(
		"sign_status",
		mcp.WithDescription("Show the current signing session step and progress"),
	)
	s.mcpServer.AddTool(statusTool, s.handleStatus)

	nextStepTool := mcp.NewTool(
		"sign_next_step",
		mcp.WithDescription("Advance the signing workflow one step (upload -> prepare -> deliver -> sign)"),
	)
	s.mcpServer.AddTool(nextStepTool, s.handleNextStep)

	prevStepTool := mcp.NewTool(
		"sign_prev_step",
		mcp.WithDescription("Go back one workflow step without losing placed fields or signatures"),
	)
	s.mcpServer.AddTool(prevStepTool, s.handlePrevStep)

	addFieldTool := mcp.NewTool(
		"sign_add_field",
		mcp.WithDescription("Place a field rectangle on a page during the prepare step. "+
			"Coordinates are viewport pixels with a top-left origin, assuming the page is rendered 612px wide. "+
			"Rectangles smaller than the drag threshold get the field type's default size."),
		mcp.WithNumber("page", mcp.Required(), mcp.Description("1-indexed page number")),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Left edge in viewport pixels")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Top edge in viewport pixels")),
		mcp.WithNumber("width", mcp.Description("Width in viewport pixels (0 for the type default)")),
		mcp.WithNumber("height", mcp.Description("Height in viewport pixels (0 for the type default)")),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Field type: signature, initial, text or date"),
		),
		mcp.WithBoolean("optional", mcp.Description("Mark the field as not required")),
	)
	s.mcpServer.AddTool(addFieldTool, s.handleAddField)

	moveFieldTool := mcp.NewTool(
		"sign_move_field",
		mcp.WithDescription("Move a placed field to a new position"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Field id")),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("New left edge in viewport pixels")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("New top edge in viewport pixels")),
	)
	s.mcpServer.AddTool(moveFieldTool, s.handleMoveField)

	resizeFieldTool := mcp.NewTool(
		"sign_resize_field",
		mcp.WithDescription("Resize a placed field"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Field id")),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Left edge in viewport pixels")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Top edge in viewport pixels")),
		mcp.WithNumber("width", mcp.Required(), mcp.Description("New width in viewport pixels")),
		mcp.WithNumber("height", mcp.Required(), mcp.Description("New height in viewport pixels")),
	)
	s.mcpServer.AddTool(resizeFieldTool, s.handleResizeField)

	removeFieldTool := mcp.NewTool(
		"sign_remove_field",
		mcp.WithDescription("Remove a placed field and any signature captured for it"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Field id")),
	)
	s.mcpServer.AddTool(removeFieldTool, s.handleRemoveField)

	listFieldsTool := mcp.NewTool(
		"sign_list_fields",
		mcp.WithDescription("List placed fields and their signing state"),
		mcp.WithNumber("page", mcp.Description("Restrict to a 1-indexed page (0 lists all pages)")),
	)
	s.mcpServer.AddTool(listFieldsTool, s.handleListFields)

	captureDrawTool := mcp.NewTool(
		"sign_capture_draw",
		mcp.WithDescription("Sign a field with a drawn signature. Strokes are a JSON array of arrays "+
			`of {"x","y"} points on a 400x176 canvas, e.g. [[{"x":10,"y":20},{"x":80,"y":60}]]`),
		mcp.WithString("field_id", mcp.Required(), mcp.Description("Field id")),
		mcp.WithString("strokes", mcp.Required(), mcp.Description("Stroke points as JSON")),
	)
	s.mcpServer.AddTool(captureDrawTool, s.handleCaptureDraw)

	captureTypeTool := mcp.NewTool(
		"sign_capture_type",
		mcp.WithDescription("Sign a field by typing a name, rendered in a script style"),
		mcp.WithString("field_id", mcp.Required(), mcp.Description("Field id")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Signature text")),
	)
	s.mcpServer.AddTool(captureTypeTool, s.handleCaptureType)

	captureUploadTool := mcp.NewTool(
		"sign_capture_upload",
		mcp.WithDescription("Sign a field with an uploaded signature image (PNG, JPEG or GIF)"),
		mcp.WithString("field_id", mcp.Required(), mcp.Description("Field id")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Full path to the image file")),
	)
	s.mcpServer.AddTool(captureUploadTool, s.handleCaptureUpload)

	signFieldTool := mcp.NewTool(
		"sign_fill_field",
		mcp.WithDescription("Auto-fill a date or name field (dates get today's date, DD/MM/YYYY)"),
		mcp.WithString("field_id", mcp.Required(), mcp.Description("Field id")),
		mcp.WithString("name", mcp.Description("Signer name for name fields (defaults to configuration)")),
	)
	s.mcpServer.AddTool(signFieldTool, s.handleFillField)

	finalizeTool := mcp.NewTool(
		"sign_finalize",
		mcp.WithDescription("Composite all signatures into the document and write the signed PDF. "+
			"Requires every required field to be signed. Resets the session on success."),
		mcp.WithString("output", mcp.Description("Output file or directory (defaults to signed_<name> in the working directory)")),
	)
	s.mcpServer.AddTool(finalizeTool, s.handleFinalize)

	submitRemoteTool := mcp.NewTool(
		"sign_submit_remote",
		mcp.WithDescription("Submit the prepared document to the remote e-signature service and "+
			"mail the signing link to the recipient. Available at the deliver step."),
		mcp.WithString("email", mcp.Required(), mcp.Description("Recipient email address")),
	)
	s.mcpServer.AddTool(submitRemoteTool, s.handleSubmitRemote)
}

func (s *Server) handleLoadDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.signService.LoadDocument(sign.LoadDocumentRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Loaded document: %s\n", result.Document.Name)
	responseText += fmt.Sprintf("Pages: %d\n", result.Document.PageCount)
	responseText += fmt.Sprintf("Size: %d bytes\n", result.Document.Size)
	for i, dim := range result.Document.Pages {
		responseText += fmt.Sprintf("Page %d: %.0fx%.0f pt\n", i+1, dim.Width, dim.Height)
	}
	if result.Document.Preview != "" {
		responseText += "\nPreview:\n" + result.Document.Preview + "\n"
	}
	responseText += "\nUse 'sign_next_step' to start placing fields."

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.formatStatus(s.signService.Status())), nil
}

func (s *Server) handleNextStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.signService.NextStep()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.formatStatus(status)), nil
}

func (s *Server) handlePrevStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.signService.PrevStep()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.formatStatus(status)), nil
}

func (s *Server) handleAddField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := request.RequireInt("page")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, err := request.RequireFloat("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := request.RequireFloat("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fieldType, err := request.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := sign.AddFieldRequest{
		PageNumber: page,
		X:          x,
		Y:          y,
		Width:      request.GetFloat("width", 0),
		Height:     request.GetFloat("height", 0),
		Type:       fieldType,
		Optional:   request.GetBool("optional", false),
	}
	result, err := s.signService.AddField(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Placed %s", result.Field)), nil
}

func (s *Server) handleMoveField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, err := request.RequireFloat("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := request.RequireFloat("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.signService.MoveField(sign.MoveFieldRequest{ID: id, X: x, Y: y})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Moved %s", result.Field)), nil
}

func (s *Server) handleResizeField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, err := request.RequireFloat("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := request.RequireFloat("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	width, err := request.RequireFloat("width")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	height, err := request.RequireFloat("height")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := sign.ResizeFieldRequest{ID: id, X: x, Y: y, Width: width, Height: height}
	result, err := s.signService.ResizeField(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Resized %s", result.Field)), nil
}

func (s *Server) handleRemoveField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.signService.RemoveField(sign.RemoveFieldRequest{ID: id}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Removed field %s and its signature", id)), nil
}

func (s *Server) handleListFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result := s.signService.ListFields(sign.ListFieldsRequest{
		PageNumber: request.GetInt("page", 0),
	})

	if len(result.Fields) == 0 {
		return mcp.NewToolResultText("No fields placed."), nil
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Fields (%d):\n", len(result.Fields))
	for _, f := range result.Fields {
		state := "unsigned"
		if result.Signed[f.ID] {
			state = "signed"
		}
		required := "required"
		if !f.Required {
			required = "optional"
		}
		fmt.Fprintf(&builder, "  %s  %s  page %d  (%.0f,%.0f %.0fx%.0f)  %s, %s\n",
			f.ID, f.Type, f.PageNumber, f.Rect.X, f.Rect.Y, f.Rect.Width, f.Rect.Height,
			required, state)
	}
	return mcp.NewToolResultText(builder.String()), nil
}

func (s *Server) handleCaptureDraw(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fieldID, err := request.RequireString("field_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	strokesJSON, err := request.RequireString("strokes")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var strokes []sign.Stroke
	if err := json.Unmarshal([]byte(strokesJSON), &strokes); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid strokes JSON: %v", err)), nil
	}

	result, err := s.signService.CaptureDraw(sign.CaptureDrawRequest{FieldID: fieldID, Strokes: strokes})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.formatSigned(result)), nil
}

func (s *Server) handleCaptureType(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fieldID, err := request.RequireString("field_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.signService.CaptureType(sign.CaptureTypeRequest{FieldID: fieldID, Text: text})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.formatSigned(result)), nil
}

func (s *Server) handleCaptureUpload(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fieldID, err := request.RequireString("field_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.signService.CaptureUpload(sign.CaptureUploadRequest{FieldID: fieldID, Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.formatSigned(result)), nil
}

func (s *Server) handleFillField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fieldID, err := request.RequireString("field_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name := request.GetString("name", s.config.SignerName)

	result, err := s.signService.SignField(fieldID, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.formatSigned(result)), nil
}

func (s *Server) handleFinalize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.signService.FinalizeLocal(sign.FinalizeLocalRequest{
		OutputPath: request.GetString("output", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Signed document written to %s (%d bytes)\n", result.Path, result.Size)
	responseText += "Session reset; load another document to continue."
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleSubmitRemote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	email, err := request.RequireString("email")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if s.remoteClient == nil || !s.remoteClient.Configured() {
		return mcp.NewToolResultError("remote signing is not configured; set a submission URL"), nil
	}

	session := s.signService.Session()
	if session.CurrentStep() != sign.StepDeliver {
		return mcp.NewToolResultError("remote submission is only available at the deliver step"), nil
	}

	fields, err := session.NormalizedFields()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc := session.Document()
	submission, err := s.remoteClient.SubmitDocument(ctx, remote.SubmissionRequest{
		DocumentName: doc.Name,
		PDF:          session.DocumentBytes(),
		Fields:       fields,
		Email:        email,
	})
	if err != nil {
		// Session state is preserved so the user can retry.
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Submission accepted for %s\n", email)

	mailSent := false
	if embedSrc := submission.EmbedSrc(); embedSrc != "" {
		body, renderErr := remote.RenderSigningEmail(embedSrc)
		if renderErr == nil {
			if mailErr := s.remoteClient.SendMailLink(ctx, email, body); mailErr == nil {
				mailSent = true
			} else if s.config.IsDebug() {
				log.Printf("mail relay failed: %v", mailErr)
			}
		}
		responseText += fmt.Sprintf("Signing URL: %s\n", embedSrc)
	}
	if mailSent {
		responseText += "Signing link mailed to the recipient.\n"
	} else {
		responseText += "Mail relay unavailable; share the signing URL directly.\n"
	}

	session.MarkRemoteSubmitted()
	responseText += "Session reset; load another document to continue."
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) formatStatus(status *sign.StatusResult) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Step: %s (%d of 4)\n", status.Step, status.StepNumber)
	if status.Document != "" {
		fmt.Fprintf(&builder, "Document: %s (%d pages)\n", status.Document, status.PageCount)
	} else {
		builder.WriteString("Document: none loaded\n")
	}
	fmt.Fprintf(&builder, "Fields: %d placed, %d signed\n", status.FieldCount, status.SignedCount)
	fmt.Fprintf(&builder, "Ready to finalize: %t", status.Ready)
	return builder.String()
}

func (s *Server) formatSigned(result *sign.SignFieldResult) string {
	text := fmt.Sprintf("Signed field %s", result.FieldID)
	if result.Ready {
		text += "\nAll required fields are signed; use 'sign_finalize' to produce the document."
	}
	return text
}

// Run starts the MCP server with the configured transport
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting PDF signing MCP server in stdio mode")
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server in HTTP server mode
func (s *Server) runServerMode(ctx context.Context) error {
	log.Printf("Server mode not yet implemented with mark3labs/mcp-go")
	log.Printf("Falling back to stdio mode")
	return s.runStdioMode(ctx)
}
