package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"photolister/internal/domain"
)

var (
	ErrEmptySelection = errors.New("no photos selected")
	ErrNoURLs         = errors.New("upload response contained no urls")
)

// UploadError is a non-success response from the upload endpoint.
type UploadError struct {
	Status int
	Body   string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed with status %d: %s", e.Status, e.Body)
}

// ListingError is a non-success response from the create-listing endpoint.
type ListingError struct {
	Status int
	Body   string
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("listing failed with status %d: %s", e.Status, e.Body)
}

// StatusFunc receives user-visible progress messages. It is the only
// progress signal an upload run produces.
type StatusFunc func(message string)

// Outcome is the terminal result of a successful run.
type Outcome struct {
	SessionID string
	URLs      []string
	Listing   any
}

// Orchestrator drives one upload-and-listing run: compress everything in
// order, post the batch, then hand the returned URLs to the listing
// endpoint. There is no cancellation once a run starts beyond ctx.
type Orchestrator struct {
	BaseURL string
	Token   string
	Client  *http.Client
	Status  StatusFunc

	comp *Compressor
	log  *zap.Logger
}

func NewOrchestrator(baseURL, token string, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Token:   token,
		Client:  &http.Client{Timeout: 2 * time.Minute},
		comp:    NewCompressor(log),
		log:     log,
	}
}

func (o *Orchestrator) UploadAll(ctx context.Context, sel *Selection) (*Outcome, error) {
	items := sel.Items()
	if len(items) == 0 {
		return nil, ErrEmptySelection
	}

	o.status("Compressing...")
	payloads := make([][]byte, len(items))
	for i, item := range items {
		data, err := o.comp.CompressFile(item.Path)
		if err != nil {
			o.status("Compression failed: " + item.Name)
			return nil, fmt.Errorf("compress %s: %w", item.Name, err)
		}
		payloads[i] = data
	}

	sessionID := uuid.NewString()

	body, contentType, err := buildMultipart(sessionID, payloads)
	if err != nil {
		return nil, err
	}

	o.status("Uploading...")
	respBody, status, err := o.post(ctx, "/upload", contentType, body)
	if err != nil {
		o.status("Upload failed")
		return nil, err
	}
	if status < 200 || status > 299 {
		o.status("Upload failed")
		return nil, &UploadError{Status: status, Body: respBody}
	}

	var uploaded domain.UploadResult
	if err := json.Unmarshal([]byte(respBody), &uploaded); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	if len(uploaded.URLs) == 0 {
		o.status("Upload returned no urls")
		return nil, ErrNoURLs
	}

	o.status("Calling listing service...")
	listingReq, err := json.Marshal(domain.ListingRequest{
		SessionID: uploaded.SessionID,
		ImageURLs: uploaded.URLs,
	})
	if err != nil {
		return nil, err
	}

	respBody, status, err = o.post(ctx, "/create-listing", "application/json", bytes.NewReader(listingReq))
	if err != nil {
		o.status("Listing call failed")
		return nil, err
	}
	if status < 200 || status > 299 {
		o.status("Listing call failed")
		return nil, &ListingError{Status: status, Body: respBody}
	}

	var listing any
	if err := json.Unmarshal([]byte(respBody), &listing); err != nil {
		listing = respBody
	}

	o.status(fmt.Sprintf("Done: %d photos listed", len(uploaded.URLs)))

	return &Outcome{
		SessionID: uploaded.SessionID,
		URLs:      uploaded.URLs,
		Listing:   listing,
	}, nil
}

// buildMultipart assembles the upload body. Part order and the zero-padded
// filename suffix both encode the selection order.
func buildMultipart(sessionID string, payloads [][]byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("sessionId", sessionID); err != nil {
		return nil, "", err
	}

	for i, payload := range payloads {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="files"; filename="photo-%02d.jpg"`, i+1))
		header.Set("Content-Type", "image/jpeg")

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(payload); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func (o *Orchestrator) post(ctx context.Context, path, contentType string, body io.Reader) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+path, body)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-app-token", o.Token)

	resp, err := o.Client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, err
	}
	return string(raw), resp.StatusCode, nil
}

func (o *Orchestrator) status(message string) {
	if o.Status != nil {
		o.Status(message)
	}
}
