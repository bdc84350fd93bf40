package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ErrorResponse is the error envelope every endpoint answers with
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertErrorResponse verifies the status, code and message of an error
// envelope. An empty expectedMessage skips the message check.
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedCode, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	var envelope ErrorResponse
	AssertJSONResponse(t, resp, &envelope)

	assert.Equal(t, expectedStatus, envelope.Status, "status in body")
	assert.Equal(t, expectedCode, envelope.Code, "error code mismatch")
	if expectedMessage != "" {
		assert.Contains(t, envelope.Message, expectedMessage, "error message mismatch")
	}
}
