package services

import (
	"testing"

	apiError "github.com/greenearthng/greenloop/errors"
	"github.com/stretchr/testify/require"
)

func TestParseClassification(t *testing.T) {
	verification, err := parseClassification(`{"wasteType": "plastic", "quantity": "5 kg", "confidence": 0.85}`)
	require.NoError(t, err)
	require.Equal(t, "plastic", verification.WasteType)
	require.Equal(t, "5 kg", verification.Quantity)
	require.Equal(t, 0.85, verification.Confidence)
}

func TestParseClassificationStripsFences(t *testing.T) {
	raw := "```json\n{\"wasteType\": \"glass\", \"quantity\": \"2 liters\", \"confidence\": 0.6}\n```"
	verification, err := parseClassification(raw)
	require.NoError(t, err)
	require.Equal(t, "glass", verification.WasteType)
}

func TestParseClassificationBadPayloads(t *testing.T) {
	cases := map[string]string{
		"not json":            "the image shows some plastic waste",
		"missing wasteType":   `{"quantity": "5 kg", "confidence": 0.85}`,
		"missing confidence":  `{"wasteType": "plastic", "quantity": "5 kg"}`,
		"confidence too high": `{"wasteType": "plastic", "quantity": "5 kg", "confidence": 1.5}`,
		"confidence negative": `{"wasteType": "plastic", "quantity": "5 kg", "confidence": -0.1}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseClassification(raw)
			require.Error(t, err)
			var parseErr *apiError.ClassificationParseError
			require.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestParseClassificationZeroConfidence(t *testing.T) {
	verification, err := parseClassification(`{"wasteType": "plastic", "quantity": "5 kg", "confidence": 0}`)
	require.NoError(t, err)
	require.Zero(t, verification.Confidence)
}

func TestParseCollectionVerification(t *testing.T) {
	cv, err := parseCollectionVerification("```json\n{\"wasteTypeMatch\": true, \"quantityMatch\": false, \"confidence\": 0.7}\n```")
	require.NoError(t, err)
	require.True(t, cv.WasteTypeMatch)
	require.False(t, cv.QuantityMatch)
	require.Equal(t, 0.7, cv.Confidence)
}

func TestParseCollectionVerificationMissingFields(t *testing.T) {
	_, err := parseCollectionVerification(`{"confidence": 0.7}`)
	var parseErr *apiError.ClassificationParseError
	require.ErrorAs(t, err, &parseErr)

	_, err = parseCollectionVerification(`{"wasteTypeMatch": true, "quantityMatch": true}`)
	require.ErrorAs(t, err, &parseErr)
}

func TestImageFormat(t *testing.T) {
	require.Equal(t, "jpeg", imageFormat("image/jpeg"))
	require.Equal(t, "png", imageFormat("image/png"))
	require.Equal(t, "jpeg", imageFormat("jpeg"))
}
