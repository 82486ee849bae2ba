// Feature CSV Processor Lambda entry point, triggered by S3 upload events.
package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"income-recommendation-engine/internal/handlers"
	"income-recommendation-engine/internal/utils"
)

func main() {
	// Initialize logger
	_ = utils.InitLogger("info")
	defer utils.Sync()

	// Create handler
	handler, err := handlers.NewCSVProcessorHandler()
	if err != nil {
		panic("Failed to create handler: " + err.Error())
	}

	// Start Lambda
	lambda.Start(handler.Handle)
}
