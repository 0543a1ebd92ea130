package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-voice/internal/platform/apierr"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{apierr.New(apierr.CodeNotFound, "course not found"), http.StatusNotFound, "not_found", "course not found"},
		{apierr.New(apierr.CodeUnauthorized, "Invalid or expired token"), http.StatusUnauthorized, "unauthorized", "Invalid or expired token"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "internal", "internal error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		RespondError(c, tc.err)

		if rec.Code != tc.wantStatus {
			t.Fatalf("status=%d want %d", rec.Code, tc.wantStatus)
		}
		var env ErrorEnvelope
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if env.Error.Code != tc.wantCode || env.Error.Message != tc.wantMsg {
			t.Fatalf("envelope=%+v", env)
		}
	}
}
