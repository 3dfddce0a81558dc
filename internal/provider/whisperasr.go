package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// DefaultTimeout is the default HTTP request timeout. Transcription of
// long recordings is slow; the pipeline treats the call as a single
// synchronous suspension point.
const DefaultTimeout = 30 * time.Minute

// ASRClient implements Transcriber against a whisper-asr-webservice
// instance (onerahmet/openai-whisper-asr-webservice).
type ASRClient struct {
	baseURL    string
	httpClient *http.Client
}

// ASROption configures the ASRClient.
type ASROption func(*ASRClient)

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) ASROption {
	return func(c *ASRClient) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ASROption {
	return func(c *ASRClient) {
		c.httpClient = client
	}
}

// NewASRClient creates a new client for the whisper-asr-webservice.
func NewASRClient(baseURL string, opts ...ASROption) *ASRClient {
	c := &ASRClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Transcribe uploads the media file and returns the recognized text with
// timestamp segments.
func (c *ASRClient) Transcribe(ctx context.Context, path string, opts Options) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open media file: %v", ErrProvider, err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio_file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%w: create form file: %v", ErrProvider, err)
	}

	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("%w: copy audio data: %v", ErrProvider, err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: close multipart writer: %v", ErrProvider, err)
	}

	reqURL, err := c.buildURL(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: build URL: %v", ErrProvider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrProvider, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: API error: status %d: %s", ErrProvider, resp.StatusCode, string(body))
	}

	return parseASRResponse(resp.Body)
}

func (c *ASRClient) buildURL(opts Options) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}

	// Ensure path ends with /asr
	if u.Path == "" || u.Path == "/" {
		u.Path = "/asr"
	}

	q := u.Query()
	q.Set("output", "json")
	q.Set("word_timestamps", "true")

	if opts.Language != "" && opts.Language != "auto" {
		q.Set("language", opts.Language)
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

func parseASRResponse(body io.Reader) (*Result, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrProvider, err)
	}

	var resp asrResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: parse JSON response: %v", ErrProvider, err)
	}

	return &Result{
		Text:     resp.Text,
		Language: resp.Language,
		Segments: resp.Segments,
	}, nil
}

// asrResponse represents the JSON response from the whisper-asr-webservice.
type asrResponse struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}
