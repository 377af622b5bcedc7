// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pdfnorm/internal/config"
	"pdfnorm/internal/extractor"
	"pdfnorm/internal/normalizer"
	"pdfnorm/internal/observability"
	"pdfnorm/internal/paths"
	"pdfnorm/internal/version"

	"github.com/google/uuid"
)

const (
	// DefaultPort is used when no --port flag is given
	DefaultPort = "8080"

	// maxUploadSize bounds the request body
	maxUploadSize = 100 << 20

	// uploadField is the multipart form field carrying the PDF
	uploadField = "file"

	// requestIDHeader echoes the id used for this upload in logs
	requestIDHeader = "X-Request-ID"
)

// Options configures the web server
type Options struct {
	Port       string
	ConfigPath string
	Layout     extractor.Layout
	Extraction extractor.Options
	// TempDir holds uploads while they are processed; defaults to paths.GetTempDir()
	TempDir string
}

// WebServer serves the single-file extraction endpoint
type WebServer struct {
	opts      Options
	mux       *http.ServeMux
	server    *http.Server
	extractor *extractor.Extractor
	observer  *observability.StandardObserver
}

// PagesResponse is returned for the pages layout
type PagesResponse struct {
	Filename string           `json:"filename"`
	Pages    []extractor.Page `json:"pages"`
	truncation
}

// TextResponse is returned for the text layout
type TextResponse struct {
	Filename      string `json:"filename"`
	ExtractedText string `json:"extracted_text"`
	truncation
}

// truncation is only present when --max-pages cut the document short
type truncation struct {
	Truncated  bool `json:"truncated,omitempty"`
	TotalPages int  `json:"total_pages,omitempty"`
}

func truncationOf(doc *extractor.Document) truncation {
	if !doc.Truncated() {
		return truncation{}
	}
	return truncation{Truncated: true, TotalPages: doc.TotalPages}
}

// ErrorResponse carries the failure message in detail
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// requestError pairs a client-visible message with an HTTP status
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string {
	return e.msg
}

var _ observability.Observable = (*WebServer)(nil)

// NewWebServer creates a new web server instance
func NewWebServer(opts Options, observer *observability.StandardObserver) *WebServer {
	if opts.Port == "" {
		opts.Port = DefaultPort
	}
	if opts.Layout == "" {
		opts.Layout = extractor.LayoutPages
	}
	if opts.TempDir == "" {
		opts.TempDir = paths.GetTempDir()
	}
	if observer == nil {
		observer = observability.Discard()
	}

	ws := &WebServer{
		opts:      opts,
		mux:       http.NewServeMux(),
		extractor: extractor.New(opts.Extraction, observer),
		observer:  observer,
	}
	ws.setupRoutes()
	return ws
}

// GetComponentName implements observability.Observable
func (ws *WebServer) GetComponentName() string {
	return "web"
}

// Handler exposes the routes for embedding and tests
func (ws *WebServer) Handler() http.Handler {
	return ws.mux
}

// setupRoutes configures all HTTP route handlers
func (ws *WebServer) setupRoutes() {
	ws.mux.HandleFunc("/extract", ws.handleExtract)
	ws.mux.HandleFunc("/health", ws.handleHealth)
}

// createSecureServer creates an HTTP server with security timeouts
func (ws *WebServer) createSecureServer(addr string) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: ws.mux,
		// Timeout for reading request headers (prevents slow header attacks)
		ReadHeaderTimeout: 15 * time.Second,
		// Uploads can be large, so the body gets more time than the headers
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
}

// Start listens on the configured port until ctx is cancelled
func (ws *WebServer) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", ":"+ws.opts.Port)
	if err != nil {
		return fmt.Errorf("could not listen on port %s: %w\n"+
			"Troubleshooting: choose another port with --port <number>", ws.opts.Port, err)
	}
	return ws.Serve(ctx, listener)
}

// Serve runs the server on an existing listener until ctx is cancelled
func (ws *WebServer) Serve(ctx context.Context, listener net.Listener) error {
	ws.server = ws.createSecureServer(listener.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- ws.server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := ws.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down web server: %w", err)
		}
		return nil
	}
}

// handleHealth reports liveness and build information
func (ws *WebServer) handleHealth(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		ws.sendError(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	build := version.Current()
	ws.sendJSON(responseWriter, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"service":    "pdfnorm",
		"version":    build.Release,
		"layout":     string(ws.opts.Layout),
		"build_info": build,
	})
}

// handleExtract accepts one PDF upload, extracts and normalizes its text
func (ws *WebServer) handleExtract(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		ws.sendError(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID := uuid.NewString()
	responseWriter.Header().Set(requestIDHeader, requestID)
	finish := ws.observer.StartTiming(ws.GetComponentName(), "extract_request", "")

	request.Body = http.MaxBytesReader(responseWriter, request.Body, maxUploadSize)

	filename, payload, err := ws.processUpload(request, requestID)
	if err != nil {
		status := http.StatusInternalServerError
		var reqErr *requestError
		if errors.As(err, &reqErr) {
			status = reqErr.status
		}
		ws.observer.LogOperation(observability.StandardObservabilityData{
			Component: ws.GetComponentName(),
			Operation: "extract_request",
			RequestID: requestID,
			FilePath:  filename,
			Error:     err.Error(),
		})
		ws.sendError(responseWriter, err.Error(), status)
		return
	}

	finish(true, map[string]interface{}{"request_id": requestID, "filename": filename})
	ws.sendJSON(responseWriter, http.StatusOK, payload)
}

// processUpload streams the multipart body, rejecting non-PDF filenames
// before anything is written to disk.
func (ws *WebServer) processUpload(request *http.Request, requestID string) (string, interface{}, error) {
	reader, err := request.MultipartReader()
	if err != nil {
		return "", nil, &requestError{http.StatusBadRequest, "Expected a multipart/form-data upload with a 'file' field"}
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return "", nil, &requestError{http.StatusBadRequest, "No file uploaded"}
		}
		if err != nil {
			return "", nil, uploadError(err)
		}

		if part.FormName() != uploadField || part.FileName() == "" {
			part.Close()
			continue
		}

		filename := part.FileName()
		if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
			part.Close()
			return filename, nil, &requestError{http.StatusBadRequest, "File must be a PDF"}
		}

		payload, err := ws.extractPart(part, filename, requestID)
		part.Close()
		return filename, payload, err
	}
}

// extractPart copies the upload to a temp file scoped to this request and
// runs extraction and normalization on it.
func (ws *WebServer) extractPart(part *multipart.Part, filename, requestID string) (interface{}, error) {
	tempFile, err := os.CreateTemp(ws.opts.TempDir, "pdfnorm_upload_*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file in %s: %w", ws.opts.TempDir, err)
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath)

	written, copyErr := io.Copy(tempFile, part)
	closeErr := tempFile.Close()
	if copyErr != nil {
		return nil, uploadError(copyErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to write upload: %w", closeErr)
	}
	if ws.observer.DebugObserver != nil {
		ws.observer.DebugObserver.LogMetric(ws.GetComponentName(), "upload_bytes", written)
	}

	ws.observer.Debugf(ws.GetComponentName(), "request %s: %s stored at %s", requestID, filename, tempPath)

	cfg, err := config.LoadHeaderConfigOrEmpty(ws.opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	norm, err := normalizer.New(cfg)
	if err != nil {
		return nil, err
	}
	normOpts := norm.Options()
	ws.observer.Debugf(ws.GetComponentName(), "request %s: %d alias rules (case_insensitive=%t, whole_word_match=%t)",
		requestID, norm.RuleCount(), normOpts.CaseInsensitive, normOpts.WholeWordMatch)

	doc, err := ws.extractor.Extract(tempPath)
	if err != nil {
		return nil, err
	}
	if err := norm.NormalizeDocument(doc); err != nil {
		return nil, err
	}

	if ws.opts.Layout == extractor.LayoutText {
		return TextResponse{Filename: filename, ExtractedText: doc.Text(), truncation: truncationOf(doc)}, nil
	}
	return PagesResponse{Filename: filename, Pages: doc.Pages, truncation: truncationOf(doc)}, nil
}

// uploadError maps body read failures to a client status
func uploadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return &requestError{http.StatusRequestEntityTooLarge, fmt.Sprintf("Upload exceeds %d bytes", maxErr.Limit)}
	}
	return &requestError{http.StatusBadRequest, fmt.Sprintf("Failed to read upload: %v", err)}
}

func (ws *WebServer) sendJSON(responseWriter http.ResponseWriter, status int, payload interface{}) {
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(status)
	if err := json.NewEncoder(responseWriter).Encode(payload); err != nil {
		ws.observer.Warn(ws.GetComponentName(), "failed to write response: %v", err)
	}
}

// sendError sends {"detail": message} with the given status
func (ws *WebServer) sendError(responseWriter http.ResponseWriter, message string, statusCode int) {
	ws.sendJSON(responseWriter, statusCode, ErrorResponse{Detail: message})
}
