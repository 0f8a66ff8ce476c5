package langid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewsynth/internal/core"
)

func TestIdentifyCommonLocales(t *testing.T) {
	id := NewTrigramIdentifier(0)
	cases := map[string]string{
		"en": "I am really happy with this purchase. The quality is excellent for the price and it fits perfectly.",
		"de": "Ich bin wirklich glücklich mit diesem Kauf. Die Qualität ist für den Preis hervorragend und die Passform stimmt.",
		"fr": "Je suis vraiment contente de cet achat. La qualité est excellente pour le prix et la coupe est parfaite.",
		"es": "Estoy muy contenta con esta compra. La calidad es excelente para el precio y la talla es perfecta.",
	}
	for want, text := range cases {
		got, err := id.Identify(text)
		require.NoError(t, err, want)
		assert.Equal(t, want, got.Lang)
		assert.GreaterOrEqual(t, got.Confidence, 0.0)
	}
}

func TestIdentifyShortTextUnavailable(t *testing.T) {
	_, err := NewTrigramIdentifier(0).Identify("Love it")
	assert.True(t, errors.Is(err, core.ErrAnalysisUnavailable))
}

func TestIdentifyLowConfidenceUnavailable(t *testing.T) {
	id := NewTrigramIdentifier(1.01)
	_, err := id.Identify("I am really happy with this purchase and the quality is great.")
	assert.True(t, errors.Is(err, core.ErrAnalysisUnavailable))
}
