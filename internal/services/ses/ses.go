// Package ses provides email notification services via AWS SES.
package ses

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	appConfig "income-recommendation-engine/internal/config"
	"income-recommendation-engine/internal/models"
	"income-recommendation-engine/internal/utils"
)

// Service handles SES email operations.
type Service struct {
	client    *ses.Client
	fromEmail string
}

// EmailParams represents parameters for sending an email.
type EmailParams struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// DigestParams contains data for a recommendation digest email sent to a
// relationship manager.
type DigestParams struct {
	RecipientEmail  string
	ClientID        int64
	IncomeSegment   string
	RiskScore       float64
	PredictedIncome float64
	Recommendations []models.Recommendation
}

// SendEmailResult contains the result of sending an email.
type SendEmailResult struct {
	MessageID string
	SentAt    time.Time
}

// NewService creates a new SES service.
func NewService(ctx context.Context) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	appCfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	client := ses.NewFromConfig(cfg)

	return &Service{
		client:    client,
		fromEmail: appCfg.SESSenderEmail,
	}, nil
}

// SendEmail sends a basic email.
func (s *Service) SendEmail(ctx context.Context, params EmailParams) (*SendEmailResult, error) {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{params.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(params.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}

	if params.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(params.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}
	if params.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(params.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		utils.Logger.Error("Failed to send email",
			zap.String("to", params.To),
			zap.String("subject", params.Subject),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	utils.Logger.Info("Email sent successfully",
		zap.String("to", params.To),
		zap.String("subject", params.Subject),
		zap.String("messageId", *result.MessageId),
	)

	return &SendEmailResult{
		MessageID: *result.MessageId,
		SentAt:    time.Now(),
	}, nil
}

// SendRecommendationDigest sends the product recommendations for one client
// to a relationship manager.
func (s *Service) SendRecommendationDigest(ctx context.Context, params DigestParams) (*SendEmailResult, error) {
	htmlBody, err := renderDigestHTML(params)
	if err != nil {
		return nil, fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Рекомендации по продуктам для клиента %d (%d шт.)",
		params.ClientID, len(params.Recommendations))

	return s.SendEmail(ctx, EmailParams{
		To:       params.RecipientEmail,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: renderDigestText(params),
	})
}

var digestTemplate = template.Must(template.New("recommendation_digest").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #2c5f8a; color: white; padding: 24px; border-radius: 10px 10px 0 0; }
        .header h1 { margin: 0; font-size: 20px; }
        .content { background: #f9f9f9; padding: 24px; border-radius: 0 0 10px 10px; }
        .offer-card { background: white; border-radius: 8px; padding: 16px; margin: 12px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .offer-card h3 { margin: 0 0 6px 0; color: #2c5f8a; }
        .offer-card .reason { color: #666; font-size: 14px; }
        .offer-card .terms { font-weight: bold; margin-top: 8px; }
        .summary td { padding: 4px 12px 4px 0; }
        .footer { text-align: center; margin-top: 24px; color: #999; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Рекомендации для клиента {{.ClientID}}</h1>
    </div>
    <div class="content">
        <table class="summary">
            <tr><td>Сегмент дохода</td><td><b>{{.IncomeSegment}}</b></td></tr>
            <tr><td>Рисковый балл</td><td><b>{{printf "%.3f" .RiskScore}}</b></td></tr>
            <tr><td>Прогноз дохода</td><td><b>{{printf "%.0f" .PredictedIncome}} руб.</b></td></tr>
        </table>

        {{range .Offers}}
        <div class="offer-card">
            <h3>{{.Number}}. {{.ProductName}}</h3>
            <p class="reason">{{.Reason}}</p>
            <p class="terms">{{.Terms}}</p>
        </div>
        {{end}}
    </div>
    <div class="footer">
        <p>Автоматическая рассылка сервиса рекомендаций банковских продуктов.</p>
    </div>
</body>
</html>`))

// digestView is the template-friendly projection of DigestParams: optional
// limit and rate are pre-rendered to a single terms line.
type digestView struct {
	ClientID        int64
	IncomeSegment   string
	RiskScore       float64
	PredictedIncome float64
	Offers          []digestOffer
}

type digestOffer struct {
	Number      int
	ProductName string
	Reason      string
	Terms       string
}

func buildDigestView(params DigestParams) digestView {
	view := digestView{
		ClientID:        params.ClientID,
		IncomeSegment:   params.IncomeSegment,
		RiskScore:       params.RiskScore,
		PredictedIncome: params.PredictedIncome,
	}

	for _, rec := range params.Recommendations {
		view.Offers = append(view.Offers, digestOffer{
			Number:      rec.ID,
			ProductName: rec.ProductName,
			Reason:      rec.Reason,
			Terms:       offerTerms(rec),
		})
	}

	return view
}

func offerTerms(rec models.Recommendation) string {
	terms := ""
	if rec.Limit != nil {
		terms = fmt.Sprintf("Лимит: %.0f руб.", *rec.Limit)
	}
	if rec.Rate != nil {
		if terms != "" {
			terms += " · "
		}
		terms += fmt.Sprintf("Ставка: %.1f%%", *rec.Rate)
	}
	return terms
}

// renderDigestHTML renders the HTML digest body.
func renderDigestHTML(params DigestParams) (string, error) {
	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, buildDigestView(params)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// renderDigestText renders the plain text version.
func renderDigestText(params DigestParams) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Клиент %d\n", params.ClientID))
	buf.WriteString(fmt.Sprintf("Сегмент дохода: %s\n", params.IncomeSegment))
	buf.WriteString(fmt.Sprintf("Рисковый балл: %.3f\n", params.RiskScore))
	buf.WriteString(fmt.Sprintf("Прогноз дохода: %.0f руб.\n\n", params.PredictedIncome))
	buf.WriteString("Рекомендованные продукты:\n\n")

	for _, rec := range params.Recommendations {
		buf.WriteString(fmt.Sprintf("%d. %s\n", rec.ID, rec.ProductName))
		if rec.Limit != nil {
			buf.WriteString(fmt.Sprintf("   Лимит: %.0f руб.\n", *rec.Limit))
		}
		if rec.Rate != nil {
			buf.WriteString(fmt.Sprintf("   Ставка: %.1f%%\n", *rec.Rate))
		}
		buf.WriteString(fmt.Sprintf("   %s\n\n", rec.Reason))
	}

	return buf.String()
}
