package api

import (
	"encoding/json"

	"fraudscope/internal/model"
)

// UploadResponse is returned by POST /upload.
type UploadResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Filename string `json:"filename"`
	FilePath string `json:"file_path"`
	FileSize int64  `json:"file_size"`
}

// IngestResponse is returned by POST /ingest. OutputPath is an opaque handle
// the backend resolves on later calls.
type IngestResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	InputRows  int    `json:"input_rows"`
	OutputRows int    `json:"output_rows"`
	OutputPath string `json:"output_path"`
}

// PredictResponse is returned by POST /predict. Success false on a 2xx
// response is a logical failure the caller must check.
type PredictResponse struct {
	Success        bool               `json:"success"`
	Predictions    []model.Prediction `json:"predictions"`
	TotalProviders int                `json:"total_providers"`
}

// SinglePredictResponse is returned by POST /predict-single.
type SinglePredictResponse struct {
	Success                  bool             `json:"success"`
	Prediction               model.Prediction `json:"prediction"`
	CalculatedMeanReimbursed float64          `json:"calculated_mean_reimbursed"`
}

// ModelMetrics holds the offline evaluation metrics for the deployed model.
type ModelMetrics struct {
	ROCAUC          float64 `json:"roc_auc"`
	Precision       float64 `json:"precision"`
	Recall          float64 `json:"recall"`
	F1Score         float64 `json:"f1_score"`
	ConfusionMatrix [][]int `json:"confusion_matrix"`
	BestParams      struct {
		LearningRate   float64 `json:"learning_rate"`
		MaxDepth       int     `json:"max_depth"`
		NEstimators    int     `json:"n_estimators"`
		ScalePosWeight float64 `json:"scale_pos_weight"`
	} `json:"best_params"`
}

// ModelInfo describes the deployed model artifact.
type ModelInfo struct {
	ModelType    string   `json:"model_type"`
	FeatureNames []string `json:"feature_names"`
	NFeatures    int      `json:"n_features"`
	ModelPath    string   `json:"model_path"`
}

// MetricsResponse is returned by GET /metricas.
type MetricsResponse struct {
	Success   bool         `json:"success"`
	Metrics   ModelMetrics `json:"metrics"`
	ModelInfo ModelInfo    `json:"model_info"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Error       string `json:"error,omitempty"`
}

// GenerateDashboardResponse is returned by POST /generate-dashboard.
type GenerateDashboardResponse struct {
	Success        bool     `json:"success"`
	OutputPath     string   `json:"output_path"`
	TotalProviders int      `json:"total_providers"`
	Columns        []string `json:"columns"`
}

// DashboardDataResponse is returned by GET /api/dashboard-data.
type DashboardDataResponse struct {
	Success bool                 `json:"success"`
	Data    []model.DashboardRow `json:"data"`
}

// ProviderDetailsResponse is returned by GET /provider-details/{name}.
type ProviderDetailsResponse struct {
	Success  bool                  `json:"success"`
	Provider model.ProviderDetails `json:"provider"`
}

// ExplainResponse is returned by the SHAP and LIME explanation endpoints.
type ExplainResponse struct {
	Success     bool            `json:"success"`
	Explanation wireExplanation `json:"explanation"`
}

// CompareResponse is returned by GET /compare-explanations/{name}: the LIME
// and SHAP attributions for one provider, side by side.
type CompareResponse struct {
	Success    bool `json:"success"`
	Comparison struct {
		Lime wireExplanation `json:"lime_explanation"`
		Shap wireExplanation `json:"shap_explanation"`
	} `json:"comparison"`
}

// wireExplanation is the backend attribution payload. LIME rows carry their
// contribution in weight; SHAP rows in shap_value. Conversion to the domain
// type normalizes both into FeatureContribution.Weight and derives the impact
// tag from the sign when the backend omitted it.
type wireExplanation struct {
	Method          string  `json:"method"`
	Prediction      int     `json:"prediction"`
	PredictionProba float64 `json:"prediction_proba"`
	BaseValue       float64 `json:"base_value"`
	Contributions   []struct {
		Feature   string   `json:"feature"`
		Value     float64  `json:"value"`
		Weight    *float64 `json:"weight"`
		ShapValue *float64 `json:"shap_value"`
		Impact    string   `json:"impact"`
	} `json:"feature_contributions"`
}

func (w wireExplanation) toModel() model.Explanation {
	out := model.Explanation{
		Method:          w.Method,
		Prediction:      w.Prediction,
		PredictionProba: w.PredictionProba,
		BaseValue:       w.BaseValue,
	}
	for _, c := range w.Contributions {
		weight := 0.0
		switch {
		case c.ShapValue != nil:
			weight = *c.ShapValue
		case c.Weight != nil:
			weight = *c.Weight
		}
		impact := model.Impact(c.Impact)
		if impact != model.ImpactPositive && impact != model.ImpactNegative {
			impact = model.ImpactFor(weight)
		}
		out.Contributions = append(out.Contributions, model.FeatureContribution{
			Feature: c.Feature,
			Value:   c.Value,
			Weight:  weight,
			Impact:  impact,
		})
	}
	return out
}

// ComparedExplanations pairs the two attribution methods for one provider.
type ComparedExplanations struct {
	Lime model.Explanation
	Shap model.Explanation
}

// ChatResultKind discriminates the chatbot response union.
type ChatResultKind int

const (
	// ChatAnswer is a normal assistant reply.
	ChatAnswer ChatResultKind = iota
	// ChatFallback is a canned reply served when the upstream LLM was
	// unavailable or rate limited.
	ChatFallback
	// ChatRefusal is an on-topic guard rejection (success false with a
	// response explaining the scope).
	ChatRefusal
	// ChatError is a backend-reported error string.
	ChatError
)

// RateLimitInfo reports upstream LLM quota state when the backend includes it.
type RateLimitInfo struct {
	Remaining  int    `json:"remaining"`
	ResetAfter string `json:"reset_after"`
}

// ChatResult is the tagged form of the chatbot endpoint's
// discriminated-by-presence union. Precedence when multiple fields are
// present: response, then fallback_response, then error.
type ChatResult struct {
	Kind      ChatResultKind
	Text      string
	Lang      string
	RateLimit *RateLimitInfo
}

// chatWire is the raw chatbot payload before union resolution.
type chatWire struct {
	Success          bool            `json:"success"`
	Response         *string         `json:"response"`
	FallbackResponse *string         `json:"fallback_response"`
	ErrorText        *string         `json:"error"`
	Lang             string          `json:"lang"`
	RateLimitInfo    json.RawMessage `json:"rate_limit_info"`
}

func (w chatWire) toResult() (ChatResult, error) {
	result := ChatResult{Lang: w.Lang}
	if len(w.RateLimitInfo) > 0 && string(w.RateLimitInfo) != "null" {
		var info RateLimitInfo
		if err := json.Unmarshal(w.RateLimitInfo, &info); err == nil {
			result.RateLimit = &info
		}
	}

	switch {
	case w.Response != nil:
		result.Text = *w.Response
		if w.Success {
			result.Kind = ChatAnswer
		} else {
			result.Kind = ChatRefusal
		}
	case w.FallbackResponse != nil:
		result.Kind = ChatFallback
		result.Text = *w.FallbackResponse
	case w.ErrorText != nil:
		result.Kind = ChatError
		result.Text = *w.ErrorText
	default:
		return ChatResult{}, errEmptyChatResponse
	}
	return result, nil
}
