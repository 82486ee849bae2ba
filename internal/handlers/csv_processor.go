// Package handlers provides Lambda handlers for the income recommendation engine.
package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appConfig "income-recommendation-engine/internal/config"
	"income-recommendation-engine/internal/services/database"
	"income-recommendation-engine/internal/utils"
)

// CSVProcessorHandler handles S3 events for feature-CSV ingestion.
type CSVProcessorHandler struct {
	s3Client   *s3.Client
	db         *database.DB
	clientRepo *database.ClientRepository
}

// NewCSVProcessorHandler creates a new CSV processor handler.
func NewCSVProcessorHandler() (*CSVProcessorHandler, error) {
	awsCfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	cfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &CSVProcessorHandler{
		s3Client:   s3.NewFromConfig(awsCfg),
		db:         db,
		clientRepo: database.NewClientRepository(db),
	}, nil
}

// CSVProcessResult is the result of processing a feature CSV file.
type CSVProcessResult struct {
	Message  string   `json:"message"`
	BatchID  string   `json:"batch_id"`
	Upserted int      `json:"upserted"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// Handle processes S3 events for uploaded feature CSV files.
func (h *CSVProcessorHandler) Handle(ctx context.Context, s3Event events.S3Event) (CSVProcessResult, error) {
	logger := utils.GetLogger()

	if len(s3Event.Records) == 0 {
		return CSVProcessResult{Message: "No records to process"}, nil
	}

	record := s3Event.Records[0]
	bucket := record.S3.Bucket.Name
	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return CSVProcessResult{}, fmt.Errorf("failed to decode S3 key: %w", err)
	}

	batchID := uuid.New().String()

	logger.Info("Processing feature CSV",
		utils.String("bucket", bucket),
		utils.String("key", key),
		utils.String("batchID", batchID))

	csvContent, err := h.downloadCSV(ctx, bucket, key)
	if err != nil {
		logger.Error("Failed to download CSV", utils.Error(err))
		return CSVProcessResult{}, fmt.Errorf("failed to download CSV: %w", err)
	}

	parser := utils.NewFeatureCSVParser()
	rows, parseErrors := parser.ParseFeatures(csvContent)

	if len(rows) == 0 {
		errMsgs := make([]string, len(parseErrors))
		for i, e := range parseErrors {
			errMsgs[i] = e.Error()
		}
		return CSVProcessResult{
			Message: "No valid feature rows found in CSV",
			BatchID: batchID,
			Errors:  errMsgs,
		}, nil
	}

	logger.Info("Parsed feature CSV",
		utils.String("batchID", batchID),
		utils.Int("validRows", len(rows)),
		utils.Int("parseErrors", len(parseErrors)))

	result, err := h.clientRepo.BulkUpsert(ctx, rows)
	if err != nil {
		logger.Error("Failed to upsert client features", utils.Error(err))
		return CSVProcessResult{}, fmt.Errorf("failed to upsert client features: %w", err)
	}

	logger.Info("Upserted client features",
		utils.String("batchID", batchID),
		utils.Int("upserted", result.UpsertedCount),
		utils.Int("failed", result.FailedCount))

	if err := h.archiveFile(ctx, bucket, key); err != nil {
		logger.Warn("Failed to archive file", utils.Error(err))
	}

	allErrors := make([]string, 0)
	for _, e := range parseErrors {
		allErrors = append(allErrors, e.Error())
	}
	allErrors = append(allErrors, result.Errors...)

	// Limit errors in response
	if len(allErrors) > 10 {
		allErrors = allErrors[:10]
	}

	return CSVProcessResult{
		Message:  "Feature CSV processed successfully",
		BatchID:  batchID,
		Upserted: result.UpsertedCount,
		Failed:   result.FailedCount + len(parseErrors),
		Errors:   allErrors,
	}, nil
}

// downloadCSV downloads CSV content from S3.
func (h *CSVProcessorHandler) downloadCSV(ctx context.Context, bucket, key string) (string, error) {
	output, err := h.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return "", err
	}
	defer output.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, output.Body); err != nil {
		return "", err
	}

	content := buf.String()
	if content == "" {
		return "", fmt.Errorf("CSV file is empty")
	}

	return content, nil
}

// archiveFile moves the processed file to an archive folder.
func (h *CSVProcessorHandler) archiveFile(ctx context.Context, bucket, key string) error {
	archiveKey := "processed/" + key
	copySource := bucket + "/" + key

	_, err := h.s3Client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     &bucket,
		CopySource: &copySource,
		Key:        &archiveKey,
	})
	if err != nil {
		return fmt.Errorf("failed to copy to archive: %w", err)
	}

	_, err = h.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete original: %w", err)
	}

	return nil
}

// Close cleans up resources.
func (h *CSVProcessorHandler) Close() {
	if h.db != nil {
		h.db.Close()
	}
}
