package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCORSAllowsLocalDevOrigins(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	origins := []string{
		"http://localhost:5174",
		"http://127.0.0.1:5173",
	}

	for _, origin := range origins {
		origin := origin
		t.Run(origin, func(t *testing.T) {
			t.Parallel()
			r := gin.New()
			r.Use(CORS(nil))
			r.OPTIONS("/api/voice/tools", func(c *gin.Context) {
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodOptions, "/api/voice/tools", nil)
			req.Header.Set("Origin", origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != http.StatusNoContent {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusNoContent)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != origin {
				t.Fatalf("unexpected allow-origin header: got=%q want=%q", got, origin)
			}
		})
	}
}

func TestAllowOrigin(t *testing.T) {
	t.Parallel()
	configured := []string{"https://learn.example.com"}
	cases := []struct {
		origins []string
		origin  string
		want    bool
	}{
		{configured, "", true},
		{configured, "https://learn.example.com", true},
		{configured, "https://evil.example.com", false},
		{nil, "http://localhost:5173", true},
		{[]string{"*"}, "https://anything.example", true},
	}
	for _, tc := range cases {
		if got := AllowOrigin(tc.origins, tc.origin); got != tc.want {
			t.Fatalf("AllowOrigin(%v, %q)=%v want %v", tc.origins, tc.origin, got, tc.want)
		}
	}
}
