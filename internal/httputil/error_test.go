package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AdamBeresnev/creature-arena/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", fmt.Errorf("%w: roster too small", service.ErrValidation), http.StatusBadRequest},
		{"not found", fmt.Errorf("%w: tournament", service.ErrNotFound), http.StatusNotFound},
		{"invariant", fmt.Errorf("%w: already started", service.ErrInvariant), http.StatusConflict},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, "request failed", tc.err)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
			if tc.status == http.StatusInternalServerError {
				assert.NotContains(t, body.Error, "disk", "internal errors are not leaked")
			}
		})
	}
}
