package rewrite_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maileazy/mailhub/pkg/rewrite"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) rewrite.Rewriter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := rewrite.NewTextCortexClient(rewrite.Config{
		APIToken: "test-token",
		BaseURL:  srv.URL,
	})
	require.NoError(t, err)
	return client
}

func TestTextCortexClient_Rewrite(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the first output", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/texts/rewritings", r.URL.Path)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "original text", req["text"])

			_, _ = w.Write([]byte(`{"data":{"outputs":[{"text":"polished text"}]}}`))
		})

		got, err := client.Rewrite(ctx, "original text")
		require.NoError(t, err)
		assert.Equal(t, "polished text", got)
	})

	t.Run("empty input is rejected locally", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		})

		_, err := client.Rewrite(ctx, "")
		assert.ErrorIs(t, err, rewrite.ErrEmptyText)
	})

	t.Run("non-200 response", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.Rewrite(ctx, "text")
		assert.ErrorIs(t, err, rewrite.ErrRewriteFailed)
	})

	t.Run("empty outputs", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":{"outputs":[]}}`))
		})

		_, err := client.Rewrite(ctx, "text")
		assert.ErrorIs(t, err, rewrite.ErrNoOutput)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := rewrite.NewTextCortexClient(rewrite.Config{})
		assert.Error(t, err)
	})
}
