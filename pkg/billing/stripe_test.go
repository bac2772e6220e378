package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maileazy/mailhub/pkg/billing"
)

func TestNewStripeProvider(t *testing.T) {
	cfg := billing.StripeConfig{
		SecretKey:     "sk_test_123",
		WebhookSecret: "whsec_123",
		SuccessURL:    "https://app.example.com/success",
		CancelURL:     "https://app.example.com/cancel",
	}

	t.Run("valid config", func(t *testing.T) {
		p, err := billing.NewStripeProvider(cfg)
		require.NoError(t, err)
		assert.NotNil(t, p)
	})

	t.Run("missing secret key", func(t *testing.T) {
		bad := cfg
		bad.SecretKey = ""
		_, err := billing.NewStripeProvider(bad)
		assert.Error(t, err)
	})

	t.Run("missing webhook secret", func(t *testing.T) {
		bad := cfg
		bad.WebhookSecret = ""
		_, err := billing.NewStripeProvider(bad)
		assert.Error(t, err)
	})
}
