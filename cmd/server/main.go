// Package main provides the HTTP API server: client income predictions,
// risk-based product recommendations, model metrics and feature-CSV ingestion.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"income-recommendation-engine/internal/config"
	"income-recommendation-engine/internal/models"
	"income-recommendation-engine/internal/services/database"
	"income-recommendation-engine/internal/services/inference"
	"income-recommendation-engine/internal/services/metrics"
	s3service "income-recommendation-engine/internal/services/s3"
	"income-recommendation-engine/internal/services/scoring"
	"income-recommendation-engine/internal/services/ses"
	"income-recommendation-engine/internal/utils"
)

// Server holds all dependencies.
type Server struct {
	db         *database.DB
	clientRepo *database.ClientRepository
	predRepo   *database.PredictionLogRepository
	featRepo   *database.FeatureDescriptionRepository
	predictor  inference.PredictionProvider
	metricsSvc *metrics.Service
	s3Svc      *s3service.Service
	sesSvc     *ses.Service
	config     *config.Config
}

// Response represents a standard API response.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// IncomeResponse is the body of the income prediction endpoint.
type IncomeResponse struct {
	ClientID        int64    `json:"client_id"`
	PredictedIncome float64  `json:"predicted_income"`
	LowerBound      float64  `json:"lower_bound"`
	UpperBound      float64  `json:"upper_bound"`
	BaseIncome      *float64 `json:"base_income,omitempty"`
	Source          string   `json:"source"`
}

// RecommendationsResponse is the body of the recommendations endpoint.
type RecommendationsResponse struct {
	ClientID        int64                   `json:"client_id"`
	RiskScore       float64                 `json:"risk_score"`
	IncomeTier      models.IncomeTier       `json:"income_tier"`
	SegmentName     string                  `json:"segment_name"`
	PredictedIncome float64                 `json:"predicted_income"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

// PresignedURLRequest represents the request for a presigned upload URL.
type PresignedURLRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// NotifyRequest is the body of the recommendation digest endpoint.
type NotifyRequest struct {
	RecipientEmail string `json:"recipient_email,omitempty"`
}

// UploadResponse contains feature-CSV ingestion results.
type UploadResponse struct {
	TotalRows    int      `json:"total_rows"`
	Upserted     int      `json:"upserted"`
	Failed       int      `json:"failed"`
	Errors       []string `json:"errors,omitempty"`
	ProcessingMs int64    `json:"processing_ms"`
}

func main() {
	// Initialize logger first
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()

	logger := utils.Logger

	db, err := database.New(cfg)
	if err != nil {
		logger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()

	predRepo := database.NewPredictionLogRepository(db)

	server := &Server{
		db:         db,
		clientRepo: database.NewClientRepository(db),
		predRepo:   predRepo,
		featRepo:   database.NewFeatureDescriptionRepository(db),
		predictor:  inference.NewClient(cfg.ModelServerURL),
		metricsSvc: metrics.NewService(cfg.MetricsPath, predRepo),
		config:     cfg,
	}

	// AWS-backed services are optional for local development.
	ctx := context.Background()
	if s3Svc, err := s3service.NewService(ctx); err != nil {
		logger.Warn("S3 service unavailable, presigned uploads disabled", zap.Error(err))
	} else {
		server.s3Svc = s3Svc
	}
	if sesSvc, err := ses.NewService(ctx); err != nil {
		logger.Warn("SES service unavailable, notifications disabled", zap.Error(err))
	} else {
		server.sesSvc = sesSvc
	}

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", server.healthHandler)
	mux.HandleFunc("GET /api/health", server.healthHandler)

	// Client API
	mux.HandleFunc("GET /api/v1/clients", server.listClientsHandler)
	mux.HandleFunc("GET /api/v1/clients/{id}", server.getClientHandler)
	mux.HandleFunc("GET /api/v1/clients/{id}/income", server.incomeHandler)
	mux.HandleFunc("GET /api/v1/clients/{id}/shap", server.shapHandler)
	mux.HandleFunc("GET /api/v1/clients/{id}/recommendations", server.recommendationsHandler)
	mux.HandleFunc("POST /api/v1/clients/{id}/notify", server.notifyHandler)

	// Model metrics
	mux.HandleFunc("GET /api/v1/metrics", server.metricsHandler)

	// Feature-CSV ingestion
	mux.HandleFunc("POST /api/presigned-url", server.presignedURLHandler)
	mux.HandleFunc("POST /api/upload", server.uploadHandler)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := c.Handler(mux)

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	logger.Info("Income Recommendation Engine API Server",
		zap.String("addr", addr),
		zap.String("stage", cfg.Stage))

	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	dbStatus := "disconnected"
	if err := s.db.HealthCheck(r.Context()); err == nil {
		dbStatus = "connected"
	}

	utils.WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Income Recommendation Engine API is running",
		Data: map[string]interface{}{
			"status":    "healthy",
			"database":  dbStatus,
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
		},
	})
}

func (s *Server) listClientsHandler(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	rows, total, err := s.clientRepo.List(r.Context(), limit, offset,
		r.URL.Query().Get("adminarea"), r.URL.Query().Get("city"))
	if err != nil {
		utils.Logger.Error("Failed to list clients", zap.Error(err))
		utils.WriteJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to fetch clients",
		})
		return
	}

	clients := make([]models.ClientSummary, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, summarizeClient(row.ID, row.Attrs))
	}

	utils.WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Data: models.ClientListResult{
			Clients: clients,
			Total:   total,
			Limit:   limit,
			Offset:  offset,
		},
	})
}

func (s *Server) getClientHandler(w http.ResponseWriter, r *http.Request) {
	clientID, attrs, ok := s.loadClient(w, r)
	if !ok {
		return
	}

	utils.WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    summarizeClient(clientID, attrs),
	})
}

func (s *Server) incomeHandler(w http.ResponseWriter, r *http.Request) {
	clientID, attrs, ok := s.loadClient(w, r)
	if !ok {
		return
	}

	resp := IncomeResponse{ClientID: clientID, Source: "model"}

	prediction, err := s.predictor.PredictIncome(r.Context(), attrs)
	if err != nil {
		utils.Logger.Warn("Income prediction failed, falling back to stored income",
			zap.Int64("clientID", clientID),
			zap.Error(err))

		fallback := scoring.ResolvePredictedIncome(attrs, nil)
		resp.Source = "fallback"
		resp.PredictedIncome = fallback
		resp.LowerBound = fallback * 0.88
		resp.UpperBound = fallback * 1.12
	} else {
		resp.PredictedIncome = prediction.PredictedIncome
		resp.LowerBound = prediction.LowerBound
		resp.UpperBound = prediction.UpperBound
		resp.BaseIncome = prediction.BaseIncome
	}

	s.logPrediction(r.Context(), clientID, resp.PredictedIncome, attrs, resp.Source)

	utils.WriteJSON(w, http.StatusOK, Response{Success: true, Data: resp})
}

func (s *Server) shapHandler(w http.ResponseWriter, r *http.Request) {
	clientID, attrs, ok := s.loadClient(w, r)
	if !ok {
		return
	}

	explanation, err := s.predictor.ExplainIncome(r.Context(), attrs)
	if err != nil {
		utils.Logger.Error("SHAP explanation failed",
			zap.Int64("clientID", clientID),
			zap.Error(err))
		utils.WriteJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Model server unavailable",
		})
		return
	}

	// Feature descriptions are decoration; the explanation is served without
	// them when the lookup fails.
	if descriptions, err := s.featRepo.GetAll(r.Context()); err != nil {
		utils.Logger.Warn("Failed to load feature descriptions", zap.Error(err))
	} else {
		for i := range explanation.Features {
			explanation.Features[i].Description = descriptions[explanation.Features[i].FeatureName]
		}
	}

	utils.WriteJSON(w, http.StatusOK, Response{Success: true, Data: explanation})
}

func (s *Server) recommendationsHandler(w http.ResponseWriter, r *http.Request) {
	clientID, attrs, ok := s.loadClient(w, r)
	if !ok {
		return
	}

	resp := s.buildRecommendations(r.Context(), clientID, attrs)
	utils.WriteJSON(w, http.StatusOK, Response{Success: true, Data: resp})
}

// buildRecommendations runs the full pipeline: prediction (with fallback),
// risk scoring, segmentation and the policy engine.
func (s *Server) buildRecommendations(ctx context.Context, clientID int64, attrs models.ClientAttributes) RecommendationsResponse {
	var predicted *float64
	source := "model"

	prediction, err := s.predictor.PredictIncome(ctx, attrs)
	if err != nil {
		utils.Logger.Warn("Income prediction failed, recommendations use stored income",
			zap.Int64("clientID", clientID),
			zap.Error(err))
		source = "fallback"
	} else {
		predicted = &prediction.PredictedIncome
	}

	predictedIncome := scoring.ResolvePredictedIncome(attrs, predicted)
	riskScore := scoring.CalculateRiskScore(attrs)
	tier := scoring.DetermineSegment(attrs, predictedIncome)
	recommendations := scoring.BuildRecommendations(attrs, predictedIncome, riskScore, tier)

	s.logPrediction(ctx, clientID, predictedIncome, attrs, source)

	return RecommendationsResponse{
		ClientID:        clientID,
		RiskScore:       riskScore,
		IncomeTier:      tier,
		SegmentName:     segmentName(attrs),
		PredictedIncome: predictedIncome,
		Recommendations: recommendations,
	}
}

func (s *Server) notifyHandler(w http.ResponseWriter, r *http.Request) {
	clientID, attrs, ok := s.loadClient(w, r)
	if !ok {
		return
	}

	if s.sesSvc == nil {
		utils.WriteJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Notifications not configured",
		})
		return
	}

	var req NotifyRequest
	_ = utils.DecodeJSON(r.Body, &req) // Body is optional
	recipient := req.RecipientEmail
	if recipient == "" {
		recipient = s.config.SESRecipientEmail
	}
	if recipient == "" {
		utils.WriteJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "No recipient email configured",
		})
		return
	}

	pipeline := s.buildRecommendations(r.Context(), clientID, attrs)

	result, err := s.sesSvc.SendRecommendationDigest(r.Context(), ses.DigestParams{
		RecipientEmail:  recipient,
		ClientID:        clientID,
		IncomeSegment:   pipeline.SegmentName,
		RiskScore:       pipeline.RiskScore,
		PredictedIncome: pipeline.PredictedIncome,
		Recommendations: pipeline.Recommendations,
	})
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to send notification",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Recommendation digest sent",
		Data: map[string]interface{}{
			"message_id": result.MessageID,
			"recipient":  recipient,
		},
	})
}

func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	report, err := s.metricsSvc.Get(r.Context())
	if err != nil {
		utils.Logger.Error("Failed to build metrics report", zap.Error(err))
		utils.WriteJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to fetch metrics",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, Response{Success: true, Data: report})
}

func (s *Server) presignedURLHandler(w http.ResponseWriter, r *http.Request) {
	if s.s3Svc == nil {
		utils.WriteJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "S3 uploads not configured",
		})
		return
	}

	var req PresignedURLRequest
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	if !strings.HasSuffix(strings.ToLower(req.Filename), ".csv") {
		utils.WriteJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Only CSV files are allowed",
		})
		return
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "text/csv"
	}

	key := fmt.Sprintf("uploads/%s/%s", time.Now().UTC().Format("2006/01/02"), req.Filename)
	result, err := s.s3Svc.GeneratePresignedUploadURL(r.Context(), key, contentType, 60)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to generate upload URL",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, Response{Success: true, Data: result})
}

func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	if err := r.ParseMultipartForm(10 << 20); err != nil { // 10MB max
		utils.WriteJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Failed to parse form: " + err.Error(),
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "No file provided",
		})
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		utils.WriteJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Only CSV files are allowed",
		})
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to read file",
		})
		return
	}

	parser := utils.NewFeatureCSVParser()
	rows, parseErrors := parser.ParseFeatures(string(content))
	if len(rows) == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   models.ErrEmptyFeatureUpload.Error(),
		})
		return
	}

	result, err := s.clientRepo.BulkUpsert(r.Context(), rows)
	if err != nil {
		utils.Logger.Error("Failed to upsert client features", zap.Error(err))
		utils.WriteJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to store features",
		})
		return
	}

	// Archive the raw file when S3 is configured. Best effort.
	if s.s3Svc != nil {
		key := fmt.Sprintf("ingested/%s/%s", time.Now().UTC().Format("2006/01/02"), header.Filename)
		if err := s.s3Svc.UploadFile(r.Context(), key, content, "text/csv"); err != nil {
			utils.Logger.Warn("Failed to archive uploaded CSV", zap.Error(err))
		}
	}

	errMsgs := make([]string, 0, len(parseErrors)+len(result.Errors))
	for _, e := range parseErrors {
		errMsgs = append(errMsgs, e.Error())
	}
	errMsgs = append(errMsgs, result.Errors...)
	if len(errMsgs) > 10 {
		errMsgs = errMsgs[:10]
	}

	utils.WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Feature CSV processed successfully",
		Data: UploadResponse{
			TotalRows:    len(rows) + len(parseErrors),
			Upserted:     result.UpsertedCount,
			Failed:       result.FailedCount + len(parseErrors),
			Errors:       errMsgs,
			ProcessingMs: time.Since(startTime).Milliseconds(),
		},
	})
}

// loadClient parses the path id and fetches the client's features, writing
// the error response itself when either step fails.
func (s *Server) loadClient(w http.ResponseWriter, r *http.Request) (int64, models.ClientAttributes, bool) {
	clientID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid client id",
		})
		return 0, nil, false
	}

	attrs, err := s.clientRepo.GetFeatures(r.Context(), clientID)
	if err != nil {
		if errors.Is(err, models.ErrClientNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, Response{
				Success: false,
				Error:   "Client not found",
			})
			return 0, nil, false
		}
		utils.Logger.Error("Failed to load client features",
			zap.Int64("clientID", clientID),
			zap.Error(err))
		utils.WriteJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to fetch client",
		})
		return 0, nil, false
	}

	return clientID, attrs, true
}

// logPrediction records a served prediction. Logging failures never fail the
// request.
func (s *Server) logPrediction(ctx context.Context, clientID int64, predictedIncome float64, attrs models.ClientAttributes, source string) {
	var actual *float64
	if income, ok := attrs.Numeric("incomeValue"); ok {
		actual = &income
	}

	if _, err := s.predRepo.Insert(ctx, &models.PredictionLogCreate{
		ClientID:        clientID,
		PredictedIncome: predictedIncome,
		ActualIncome:    actual,
		Source:          source,
	}); err != nil {
		utils.Logger.Warn("Failed to log prediction",
			zap.Int64("clientID", clientID),
			zap.Error(err))
	}
}

// summarizeClient projects a feature map onto the client view with live risk
// and segment derivations.
func summarizeClient(id int64, attrs models.ClientAttributes) models.ClientSummary {
	summary := models.ClientSummary{
		ID:            id,
		IncomeSegment: segmentName(attrs),
		RiskScore:     scoring.CalculateRiskScore(attrs),
	}

	if age, ok := attrs.Numeric("age"); ok {
		ageInt := int(age)
		summary.Age = &ageInt
	}
	summary.City, _ = attrs.Categorical("city")
	summary.AdminArea, _ = attrs.Categorical("adminarea")

	return summary
}

// segmentName resolves the display label from the stored income attributes.
func segmentName(attrs models.ClientAttributes) string {
	var income *float64
	if v, ok := attrs.Numeric("incomeValue"); ok {
		income = &v
	}
	category, _ := attrs.Categorical("incomeValueCategory")
	return scoring.IncomeSegmentName(income, category)
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
