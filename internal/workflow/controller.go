// Package workflow sequences the bulk fraud-detection pipeline: stage CSV
// uploads, ingest them into the consolidated dataset, run the batch
// prediction, and expose the results for the views built on top.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"fraudscope/internal/api"
	"fraudscope/internal/model"
)

// Backend is the slice of the API client the controller drives. Defined here
// so tests can substitute a mock.
type Backend interface {
	UploadFile(ctx context.Context, path string) (api.UploadResponse, error)
	IngestData(ctx context.Context) (api.IngestResponse, error)
	PredictFraud(ctx context.Context) (api.PredictResponse, error)
	TestFinalPreview(ctx context.Context) ([]map[string]any, error)
}

// Phase is the batch session's position in the pipeline.
type Phase int

const (
	// PhaseEmpty is the initial state: nothing staged.
	PhaseEmpty Phase = iota
	// PhaseStaged means at least one file uploaded successfully.
	PhaseStaged
	// PhaseIngested means the staged files were consolidated; a one-way gate.
	PhaseIngested
	// PhasePredicted means batch predictions are available.
	PhasePredicted
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseStaged:
		return "staged"
	case PhaseIngested:
		return "ingested"
	case PhasePredicted:
		return "predicted"
	default:
		return "empty"
	}
}

// Controller owns one batch session's state. All mutations must come from a
// single caller goroutine; the controller is driven by serialized user
// actions and does not lock.
type Controller struct {
	backend     Backend
	files       []model.StagedFile
	ingest      *api.IngestResponse
	predictions []model.Prediction
	phase       Phase
}

// NewController creates a controller in the Empty phase.
func NewController(backend Backend) *Controller {
	return &Controller{backend: backend}
}

// Phase returns the current pipeline phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Files returns the staged file list in staging order.
func (c *Controller) Files() []model.StagedFile {
	return c.files
}

// Predictions returns the batch results, nil before PhasePredicted.
func (c *Controller) Predictions() []model.Prediction {
	return c.predictions
}

// IngestResult returns the successful ingest outcome, nil before it.
func (c *Controller) IngestResult() *api.IngestResponse {
	return c.ingest
}

// StageResult reports the outcome of one StageFiles call.
type StageResult struct {
	Staged   int
	Failed   int
	Rejected []string // non-CSV paths rejected before any network call
}

// StageFiles classifies and uploads the given files. Non-CSV files are
// rejected up front. A file whose upload fails is kept in the list with an
// error status and message; the rest of the batch proceeds (partial-failure
// semantics). The session reaches PhaseStaged once at least one file has
// uploaded successfully.
func (c *Controller) StageFiles(ctx context.Context, paths ...string) StageResult {
	if c.phase >= PhaseIngested {
		// Staging after ingest would desynchronize the session from the
		// backend's consolidated dataset; the caller gates on CanStage.
		return StageResult{}
	}

	var result StageResult
	for _, path := range paths {
		if !model.IsCSV(path) {
			slog.Warn("Rejected non-CSV file", "path", path)
			result.Rejected = append(result.Rejected, path)
			continue
		}

		staged := model.StagedFile{
			Name:     filepath.Base(path),
			Path:     path,
			Category: model.ClassifyFilename(path),
			Status:   model.FileUploaded,
		}

		resp, err := c.backend.UploadFile(ctx, path)
		switch {
		case err != nil:
			staged.Status = model.FileError
			staged.Error = err.Error()
			result.Failed++
			slog.Error("File upload failed", "file", staged.Name, "error", err)
		case !resp.Success:
			staged.Status = model.FileError
			staged.Error = resp.Message
			result.Failed++
			slog.Error("File upload rejected", "file", staged.Name, "message", resp.Message)
		default:
			result.Staged++
			slog.Info("File staged", "file", staged.Name, "category", staged.Category, "size", resp.FileSize)
		}

		c.files = append(c.files, staged)
	}

	if c.uploadedCount() > 0 {
		c.phase = PhaseStaged
	}
	return result
}

// RemoveFile drops the staged file at index i. Removing the last file
// returns the session to Empty; later phases are unaffected because removal
// is only offered before ingest.
func (c *Controller) RemoveFile(i int) {
	if i < 0 || i >= len(c.files) {
		return
	}
	c.files = append(c.files[:i], c.files[i+1:]...)
	if c.phase == PhaseStaged && c.uploadedCount() == 0 {
		c.phase = PhaseEmpty
	}
}

// CanStage reports whether more files may be added to the session.
func (c *Controller) CanStage() bool {
	return c.phase < PhaseIngested
}

// CanIngest reports whether ingestion is currently allowed: at least one
// successfully uploaded file, and not already ingested. Once ingestion has
// succeeded it stays disabled for the session.
func (c *Controller) CanIngest() bool {
	return c.phase == PhaseStaged && c.uploadedCount() > 0
}

// Ingest consolidates the staged uploads. On success the session advances to
// PhaseIngested and re-ingestion is disabled. Any failure (transport, HTTP,
// or a success:false body) leaves the phase unchanged so the user can retry.
func (c *Controller) Ingest(ctx context.Context) (api.IngestResponse, error) {
	if !c.CanIngest() {
		if c.phase >= PhaseIngested {
			return api.IngestResponse{}, fmt.Errorf("data already processed for this session")
		}
		return api.IngestResponse{}, fmt.Errorf("no uploaded files to process")
	}

	resp, err := c.backend.IngestData(ctx)
	if err != nil {
		return api.IngestResponse{}, err
	}
	if !resp.Success {
		return api.IngestResponse{}, fmt.Errorf("data processing failed: %s", resp.Message)
	}

	c.ingest = &resp
	c.phase = PhaseIngested
	slog.Info("Ingest complete",
		"input_rows", resp.InputRows,
		"output_rows", resp.OutputRows,
		"output_path", resp.OutputPath)
	return resp, nil
}

// CanPredict reports whether the batch prediction is currently allowed.
// Prediction stays available after a first run; re-running replaces the
// previous results.
func (c *Controller) CanPredict() bool {
	return c.phase >= PhaseIngested
}

// Predict runs the batch prediction over the ingested dataset. A logical
// failure (success:false) is surfaced as an error but, like a transport or
// HTTP failure, keeps the session in its prior phase: prior steps are never
// rolled back and nothing is retried automatically.
func (c *Controller) Predict(ctx context.Context) ([]model.Prediction, error) {
	if !c.CanPredict() {
		return nil, fmt.Errorf("no processed data: run ingest first")
	}

	resp, err := c.backend.PredictFraud(ctx)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("prediction failed")
	}

	c.predictions = resp.Predictions
	c.phase = PhasePredicted
	slog.Info("Prediction complete", "total_providers", resp.TotalProviders)
	return resp.Predictions, nil
}

// Preview fetches the first rows of the consolidated dataset. Only available
// once ingestion has succeeded.
func (c *Controller) Preview(ctx context.Context) ([]map[string]any, error) {
	if c.phase < PhaseIngested {
		return nil, fmt.Errorf("no processed data to preview: run ingest first")
	}
	return c.backend.TestFinalPreview(ctx)
}

// Reset returns the session to Empty, discarding staged files and results.
// This is the only way back; there is no timeout or expiry.
func (c *Controller) Reset() {
	c.files = nil
	c.ingest = nil
	c.predictions = nil
	c.phase = PhaseEmpty
	slog.Info("Session reset")
}

func (c *Controller) uploadedCount() int {
	count := 0
	for _, f := range c.files {
		if f.Status == model.FileUploaded {
			count++
		}
	}
	return count
}
