package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	apiError "github.com/greenearthng/greenloop/errors"
	"github.com/greenearthng/greenloop/models"
)

// MinClassificationConfidence is the floor below which a classification
// is stored but the report is not marked source-verified.
const MinClassificationConfidence = 0.5

const classifierModel = "gemini-1.5-flash"

const classifyPrompt = `You are an expert in waste management and recycling. Analyze this image and provide:
1. The type of waste (e.g. plastic, paper, glass, metal, organic)
2. An estimate of the quantity or amount (in kg or liters)
3. Your confidence level in this assessment (as a number between 0 and 1)

Respond in JSON format like this:
{"wasteType": "type of waste", "quantity": "estimated quantity with unit", "confidence": confidence level as a number between 0 and 1}`

const verifyCollectionPromptFmt = `You are verifying a waste collection. The original report said the waste type was "%s" and the amount was "%s". Analyze this image of the collected waste and respond in JSON format like this:
{"wasteTypeMatch": true/false, "quantityMatch": true/false, "confidence": confidence level as a number between 0 and 1}`

type ClassifierService interface {
	Classify(ctx context.Context, image []byte, mimeType string) (*models.Verification, error)
	VerifyCollection(ctx context.Context, image []byte, mimeType string, report *models.Report) (*models.CollectionVerification, error)
}

type classifierService struct {
	client *genai.Client
}

// NewClassifierService wraps an injected genai client; the client is
// created once at boot and reused.
func NewClassifierService(client *genai.Client) ClassifierService {
	return &classifierService{client: client}
}

func (s *classifierService) Classify(ctx context.Context, image []byte, mimeType string) (*models.Verification, error) {
	text, err := s.generate(ctx, image, mimeType, classifyPrompt)
	if err != nil {
		return nil, err
	}
	return parseClassification(text)
}

func (s *classifierService) VerifyCollection(ctx context.Context, image []byte, mimeType string, report *models.Report) (*models.CollectionVerification, error) {
	prompt := fmt.Sprintf(verifyCollectionPromptFmt, report.WasteType, report.Amount)
	text, err := s.generate(ctx, image, mimeType, prompt)
	if err != nil {
		return nil, err
	}
	return parseCollectionVerification(text)
}

func (s *classifierService) generate(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	model := s.client.GenerativeModel(classifierModel)
	resp, err := model.GenerateContent(ctx,
		genai.ImageData(imageFormat(mimeType), image),
		genai.Text(prompt),
	)
	if err != nil {
		return "", &apiError.ClassificationServiceError{Err: err}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &apiError.ClassificationParseError{Reason: "empty response"}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// imageFormat maps a MIME type to the bare format genai expects.
func imageFormat(mimeType string) string {
	return strings.TrimPrefix(mimeType, "image/")
}

// stripFences removes the markdown code fences the model tends to wrap
// its JSON answer in.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func parseClassification(text string) (*models.Verification, error) {
	var raw struct {
		WasteType  string   `json:"wasteType"`
		Quantity   string   `json:"quantity"`
		Confidence *float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(stripFences(text)), &raw); err != nil {
		return nil, &apiError.ClassificationParseError{Reason: "invalid JSON"}
	}
	if raw.WasteType == "" {
		return nil, &apiError.ClassificationParseError{Reason: "missing wasteType"}
	}
	if raw.Confidence == nil {
		return nil, &apiError.ClassificationParseError{Reason: "missing confidence"}
	}
	if *raw.Confidence < 0 || *raw.Confidence > 1 {
		return nil, &apiError.ClassificationParseError{Reason: "confidence out of range"}
	}

	return &models.Verification{
		WasteType:  raw.WasteType,
		Quantity:   raw.Quantity,
		Confidence: *raw.Confidence,
	}, nil
}

func parseCollectionVerification(text string) (*models.CollectionVerification, error) {
	var raw struct {
		WasteTypeMatch *bool    `json:"wasteTypeMatch"`
		QuantityMatch  *bool    `json:"quantityMatch"`
		Confidence     *float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(stripFences(text)), &raw); err != nil {
		return nil, &apiError.ClassificationParseError{Reason: "invalid JSON"}
	}
	if raw.WasteTypeMatch == nil || raw.QuantityMatch == nil {
		return nil, &apiError.ClassificationParseError{Reason: "missing match fields"}
	}
	if raw.Confidence == nil {
		return nil, &apiError.ClassificationParseError{Reason: "missing confidence"}
	}

	return &models.CollectionVerification{
		WasteTypeMatch: *raw.WasteTypeMatch,
		QuantityMatch:  *raw.QuantityMatch,
		Confidence:     *raw.Confidence,
	}, nil
}
