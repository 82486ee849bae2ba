package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"income-recommendation-engine/internal/models"
)

func TestClient_PredictIncome(t *testing.T) {
	var gotFeatures map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predict", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req struct {
			Features map[string]interface{} `json:"features"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotFeatures = req.Features

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"predicted_income": 92000.0,
			"lower_bound":      81000.0,
			"upper_bound":      103000.0,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	attrs := models.ClientAttributes{
		"incomeValue": 85000.0,
		"city":        "nan", // must arrive as null
	}

	prediction, err := client.PredictIncome(context.Background(), attrs)

	require.NoError(t, err)
	assert.Equal(t, 92000.0, prediction.PredictedIncome)
	assert.Equal(t, 81000.0, prediction.LowerBound)
	assert.Equal(t, 103000.0, prediction.UpperBound)

	assert.Equal(t, 85000.0, gotFeatures["incomeValue"])
	assert.Nil(t, gotFeatures["city"], "missing tokens must be shipped as null")
}

func TestClient_PredictIncome_DefaultInterval(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"predicted_income": 100000.0})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	prediction, err := client.PredictIncome(context.Background(), models.ClientAttributes{})

	require.NoError(t, err)
	assert.InDelta(t, 88000.0, prediction.LowerBound, 0.001)
	assert.InDelta(t, 112000.0, prediction.UpperBound, 0.001)
}

func TestClient_PredictIncome_NoBaseURL(t *testing.T) {
	client := NewClient("")

	_, err := client.PredictIncome(context.Background(), models.ClientAttributes{})

	assert.ErrorIs(t, err, models.ErrModelUnavailable)
}

func TestClient_PredictIncome_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.PredictIncome(context.Background(), models.ClientAttributes{})

	assert.Error(t, err)
}

func TestClient_ExplainIncome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/shap", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"base_value": 78000.0,
			"shap_values": map[string]float64{
				"incomeValue":            12000.0,
				"age":                    -3000.0,
				"dp_ils_total_seniority": 500.0,
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	attrs := models.ClientAttributes{"incomeValue": 85000.0, "age": 29.0}

	explanation, err := client.ExplainIncome(context.Background(), attrs)

	require.NoError(t, err)
	require.NotNil(t, explanation.BaseValue)
	assert.Equal(t, 78000.0, *explanation.BaseValue)
	require.Len(t, explanation.Features, 3)

	// Ordered by absolute impact.
	assert.Equal(t, "incomeValue", explanation.Features[0].FeatureName)
	assert.Equal(t, models.ShapDirectionPositive, explanation.Features[0].Direction)
	assert.Equal(t, "age", explanation.Features[1].FeatureName)
	assert.Equal(t, models.ShapDirectionNegative, explanation.Features[1].Direction)

	// Client-side feature values are echoed into the explanation.
	assert.Equal(t, 85000.0, explanation.Features[0].Value)

	assert.NotEmpty(t, explanation.TextExplanation)
	assert.Contains(t, explanation.TextExplanation, "incomeValue")
}

func TestBuildExplanationText_NoFeatures(t *testing.T) {
	text := BuildExplanationText(nil)
	assert.NotEmpty(t, text)
}
