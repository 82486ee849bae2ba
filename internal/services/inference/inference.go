// Package inference provides the client for the income model server. The
// model itself (training, SHAP computation) is an opaque external
// collaborator; this package only ships features over and maps responses
// back into domain types.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"income-recommendation-engine/internal/models"
	"income-recommendation-engine/internal/utils"
)

// PredictionProvider is the narrow contract the serving layer depends on.
// Constructed once at startup and injected; implementations must be safe for
// concurrent use.
type PredictionProvider interface {
	PredictIncome(ctx context.Context, attrs models.ClientAttributes) (*models.IncomePrediction, error)
	ExplainIncome(ctx context.Context, attrs models.ClientAttributes) (*models.ShapResponse, error)
}

// Client calls the model server over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a model server client. An empty baseURL yields a client
// whose calls fail fast, which the serving layer downgrades to income
// fallbacks.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// predictRequest is the wire format the model server accepts. Missing values
// are shipped as explicit nulls.
type predictRequest struct {
	Features models.ClientAttributes `json:"features"`
}

type predictResponse struct {
	PredictedIncome float64  `json:"predicted_income"`
	LowerBound      *float64 `json:"lower_bound,omitempty"`
	UpperBound      *float64 `json:"upper_bound,omitempty"`
	BaseIncome      *float64 `json:"base_income,omitempty"`
}

type shapResponse struct {
	BaseValue  float64            `json:"base_value"`
	ShapValues map[string]float64 `json:"shap_values"`
}

// PredictIncome returns the model's income estimate for the given features.
func (c *Client) PredictIncome(ctx context.Context, attrs models.ClientAttributes) (*models.IncomePrediction, error) {
	if c.baseURL == "" {
		return nil, models.ErrModelUnavailable
	}

	var resp predictResponse
	if err := c.post(ctx, "/predict", predictRequest{Features: attrs.Sanitized()}, &resp); err != nil {
		return nil, err
	}

	prediction := &models.IncomePrediction{
		PredictedIncome: resp.PredictedIncome,
		BaseIncome:      resp.BaseIncome,
	}

	// The server may omit the interval; degrade to a +-12% band so the API
	// contract stays stable.
	if resp.LowerBound != nil && resp.UpperBound != nil {
		prediction.LowerBound = *resp.LowerBound
		prediction.UpperBound = *resp.UpperBound
	} else {
		prediction.LowerBound = resp.PredictedIncome * 0.88
		prediction.UpperBound = resp.PredictedIncome * 1.12
	}

	return prediction, nil
}

// ExplainIncome returns the SHAP explanation for the given features. Feature
// contributions are ordered by absolute impact, largest first.
func (c *Client) ExplainIncome(ctx context.Context, attrs models.ClientAttributes) (*models.ShapResponse, error) {
	if c.baseURL == "" {
		return nil, models.ErrModelUnavailable
	}

	var resp shapResponse
	if err := c.post(ctx, "/shap", predictRequest{Features: attrs.Sanitized()}, &resp); err != nil {
		return nil, err
	}

	features := make([]models.ShapFeature, 0, len(resp.ShapValues))
	for name, shapValue := range resp.ShapValues {
		direction := models.ShapDirectionPositive
		if shapValue < 0 {
			direction = models.ShapDirectionNegative
		}

		features = append(features, models.ShapFeature{
			FeatureName: name,
			Value:       attrs[name],
			ShapValue:   shapValue,
			Direction:   direction,
		})
	}

	sort.Slice(features, func(i, j int) bool {
		return abs(features[i].ShapValue) > abs(features[j].ShapValue)
	})

	baseValue := resp.BaseValue
	return &models.ShapResponse{
		TextExplanation: BuildExplanationText(features),
		Features:        features,
		BaseValue:       &baseValue,
	}, nil
}

// post sends a JSON request and decodes a JSON response.
func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		utils.GetLogger().Warn("Model server request failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("model server request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model server returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode model server response: %w", err)
	}

	return nil
}

// BuildExplanationText renders a short human-readable summary of the top
// contributions. Expects features sorted by absolute impact.
func BuildExplanationText(features []models.ShapFeature) string {
	var positive, negative []string
	for _, f := range features {
		if len(positive) >= 3 && len(negative) >= 3 {
			break
		}
		if f.Direction == models.ShapDirectionPositive && len(positive) < 3 {
			positive = append(positive, f.FeatureName)
		}
		if f.Direction == models.ShapDirectionNegative && len(negative) < 3 {
			negative = append(negative, f.FeatureName)
		}
	}

	switch {
	case len(positive) == 0 && len(negative) == 0:
		return "Модель не выделила значимых факторов для данного прогноза."
	case len(negative) == 0:
		return fmt.Sprintf("Прогноз дохода повышают факторы: %s.", join(positive))
	case len(positive) == 0:
		return fmt.Sprintf("Прогноз дохода снижают факторы: %s.", join(negative))
	default:
		return fmt.Sprintf("Прогноз дохода повышают факторы: %s; снижают: %s.",
			join(positive), join(negative))
	}
}

func join(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
