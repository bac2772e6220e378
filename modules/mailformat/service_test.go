package mailformat_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maileazy/mailhub/modules/mailformat"
)

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createFormat(t *testing.T, h http.Handler) mailformat.MailFormat {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/",
		`{"userEmail":"alice@example.com","formatName":"newsletter","subject":"Weekly","body":"<p>news</p>"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var f mailformat.MailFormat
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &f))
	return f
}

func TestMailFormatCRUD(t *testing.T) {
	h := mailformat.NewService(mailformat.NewMemoryStore(), nil).Handle()

	f := createFormat(t, h)
	assert.Equal(t, "newsletter", f.Name)
	require.NotEmpty(t, f.ID)

	t.Run("get", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/"+f.ID.String(), "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "newsletter")
	})

	t.Run("list by user", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/user/alice@example.com", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), f.ID.String())
	})

	t.Run("update", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPut, "/"+f.ID.String(),
			`{"userEmail":"alice@example.com","formatName":"digest","subject":"Monthly","body":"<p>digest</p>"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "digest")
	})

	t.Run("delete then get", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodDelete, "/"+f.ID.String(), "")
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, h, http.MethodGet, "/"+f.ID.String(), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestMailFormatValidation(t *testing.T) {
	h := mailformat.NewService(mailformat.NewMemoryStore(), nil).Handle()

	rec := doJSON(t, h, http.MethodPost, "/", `{"userEmail":"bad","formatName":"","subject":"","body":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMailFormatUnknownID(t *testing.T) {
	h := mailformat.NewService(mailformat.NewMemoryStore(), nil).Handle()

	rec := doJSON(t, h, http.MethodGet, "/c1f0b7f0-0000-0000-0000-000000000000", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
