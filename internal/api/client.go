// Package api is the sole point of contact with the fraud-detection backend.
// It defines the wire contract as typed request/response pairs and converts
// every failure into a RequestError with a human-readable message.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"fraudscope/internal/model"
)

var errEmptyChatResponse = errors.New("chatbot response carried no response, fallback or error field")

// Config holds the client configuration. One Config is built at startup and
// shared by every caller; the base URL is the single backend origin.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client issues typed requests against the backend. Construct one with New
// and inject it; callers never build ad hoc clients per call.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a backend client from the given configuration.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// do issues a request and decodes the 2xx JSON body into out. Non-2xx
// responses become a RequestError whose message comes from the body's detail
// field when the body parses; a body that fails to parse falls back to a
// generic status message rather than surfacing a secondary error.
func (c *Client) do(ctx context.Context, op, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return &RequestError{Op: op, Message: "failed to encode request", Err: err}
		}
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &RequestError{Op: op, Message: "failed to create request", Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{Op: op, Message: err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RequestError{Op: op, Status: resp.StatusCode, Message: errorMessage(resp)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RequestError{Op: op, Status: resp.StatusCode, Message: "failed to decode response", Err: err}
	}
	return nil
}

// errorMessage extracts the backend's detail field from an error response,
// falling back to a generic status message.
func errorMessage(resp *http.Response) string {
	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&detail); err == nil && detail.Detail != "" {
		return detail.Detail
	}
	return fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
}

// UploadFile stages one CSV on the backend via multipart form upload. The
// caller is responsible for rejecting non-CSV files before calling.
func (c *Client) UploadFile(ctx context.Context, path string) (UploadResponse, error) {
	filename := filepath.Base(path)

	file, err := os.Open(path)
	if err != nil {
		return UploadResponse{}, &UploadError{Filename: filename, Message: err.Error(), Err: err}
	}
	defer func() { _ = file.Close() }()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return UploadResponse{}, &UploadError{Filename: filename, Message: "failed to build form", Err: err}
	}
	if _, err := io.Copy(part, file); err != nil {
		return UploadResponse{}, &UploadError{Filename: filename, Message: "failed to read file", Err: err}
	}
	if err := writer.Close(); err != nil {
		return UploadResponse{}, &UploadError{Filename: filename, Message: "failed to finalize form", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return UploadResponse{}, &UploadError{Filename: filename, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	slog.Debug("Uploading file", "filename", filename, "category", model.ClassifyFilename(filename))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UploadResponse{}, &UploadError{Filename: filename, Message: err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return UploadResponse{}, &UploadError{Filename: filename, Status: resp.StatusCode, Message: errorMessage(resp)}
	}

	var result UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return UploadResponse{}, &UploadError{Filename: filename, Status: resp.StatusCode, Message: "failed to decode response", Err: err}
	}
	return result, nil
}

// IngestData consolidates the staged uploads into the final dataset. It takes
// no input; the backend operates on its own staged files.
func (c *Client) IngestData(ctx context.Context) (IngestResponse, error) {
	var result IngestResponse
	err := c.do(ctx, "ingest", http.MethodPost, "/ingest", nil, &result)
	return result, err
}

// PredictFraud runs the batch prediction over the ingested dataset. A 2xx
// response with Success false is a logical failure the caller must check.
func (c *Client) PredictFraud(ctx context.Context) (PredictResponse, error) {
	var result PredictResponse
	err := c.do(ctx, "predict", http.MethodPost, "/predict", nil, &result)
	return result, err
}

// PredictSingle scores one provider from its feature vector. The request is
// validated client-side before any network call.
func (c *Client) PredictSingle(ctx context.Context, req model.PredictionRequest) (SinglePredictResponse, error) {
	if err := req.Validate(); err != nil {
		return SinglePredictResponse{}, err
	}
	var result SinglePredictResponse
	err := c.do(ctx, "predict-single", http.MethodPost, "/predict-single", req, &result)
	return result, err
}

// GetMetrics fetches the model evaluation metrics and artifact info.
func (c *Client) GetMetrics(ctx context.Context) (MetricsResponse, error) {
	var result MetricsResponse
	err := c.do(ctx, "metrics", http.MethodGet, "/metricas", nil, &result)
	return result, err
}

// Health checks backend liveness and whether the model is loaded.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var result HealthResponse
	err := c.do(ctx, "health", http.MethodGet, "/health", nil, &result)
	return result, err
}

// GenerateDashboard asks the backend to materialize the per-provider
// dashboard aggregates.
func (c *Client) GenerateDashboard(ctx context.Context) (GenerateDashboardResponse, error) {
	var result GenerateDashboardResponse
	err := c.do(ctx, "generate-dashboard", http.MethodPost, "/generate-dashboard", nil, &result)
	return result, err
}

// GetDashboardData fetches the materialized per-provider aggregates.
func (c *Client) GetDashboardData(ctx context.Context) (DashboardDataResponse, error) {
	var result DashboardDataResponse
	err := c.do(ctx, "dashboard-data", http.MethodGet, "/api/dashboard-data", nil, &result)
	return result, err
}

// GetProviderDetails fetches the aggregate view for one provider. The name
// is percent-encoded into the path.
func (c *Client) GetProviderDetails(ctx context.Context, provider string) (ProviderDetailsResponse, error) {
	var result ProviderDetailsResponse
	err := c.do(ctx, "provider-details", http.MethodGet, "/provider-details/"+url.PathEscape(provider), nil, &result)
	return result, err
}

// ExplainSHAP fetches the SHAP attribution for a feature vector.
func (c *Client) ExplainSHAP(ctx context.Context, req model.PredictionRequest) (model.Explanation, error) {
	return c.explain(ctx, "explain-shap", "/explain-shap", req)
}

// ExplainLIME fetches the LIME attribution for a feature vector.
func (c *Client) ExplainLIME(ctx context.Context, req model.PredictionRequest) (model.Explanation, error) {
	return c.explain(ctx, "explain-lime", "/explain-lime", req)
}

func (c *Client) explain(ctx context.Context, op, path string, req model.PredictionRequest) (model.Explanation, error) {
	if err := req.Validate(); err != nil {
		return model.Explanation{}, err
	}
	var result ExplainResponse
	if err := c.do(ctx, op, http.MethodPost, path, req, &result); err != nil {
		return model.Explanation{}, err
	}
	return result.Explanation.toModel(), nil
}

// CompareExplanations fetches the paired LIME and SHAP attributions for one
// provider in a single call.
func (c *Client) CompareExplanations(ctx context.Context, provider string) (ComparedExplanations, error) {
	var result CompareResponse
	err := c.do(ctx, "compare-explanations", http.MethodGet, "/compare-explanations/"+url.PathEscape(provider), nil, &result)
	if err != nil {
		return ComparedExplanations{}, err
	}
	return ComparedExplanations{
		Lime: result.Comparison.Lime.toModel(),
		Shap: result.Comparison.Shap.toModel(),
	}, nil
}

// ChatbotAnalyze sends a message with its structured context to the AI
// assistant and resolves the response union into a tagged ChatResult.
func (c *Client) ChatbotAnalyze(ctx context.Context, chatContext map[string]any, message string) (ChatResult, error) {
	payload := map[string]any{
		"context": chatContext,
		"message": message,
	}
	var wire chatWire
	if err := c.do(ctx, "chatbot", http.MethodPost, "/chatbot/analyze", payload, &wire); err != nil {
		return ChatResult{}, err
	}
	result, err := wire.toResult()
	if err != nil {
		return ChatResult{}, &RequestError{Op: "chatbot", Status: http.StatusOK, Message: err.Error(), Err: err}
	}
	return result, nil
}

// TestFinalPreview fetches the first rows of the consolidated dataset. Rows
// come back as loose column/value maps since the preview schema follows
// whatever the ingest produced.
func (c *Client) TestFinalPreview(ctx context.Context) ([]map[string]any, error) {
	var rows []map[string]any
	if err := c.do(ctx, "preview", http.MethodGet, "/api/test-final-preview", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
