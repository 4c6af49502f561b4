package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHandlersWithoutIdentityUseErrorBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handler{}

	for name, fn := range map[string]gin.HandlerFunc{
		"me":       h.Me,
		"activity": h.Activity,
		"tasks":    h.ListTasks,
	} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		fn(c)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d; want 401", name, w.Code)
		}
		var body ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: body %q: %v", name, w.Body.String(), err)
		}
		if body.Code != "MISSING_TOKEN" || body.Message == "" {
			t.Fatalf("%s: body = %+v", name, body)
		}
	}
}
