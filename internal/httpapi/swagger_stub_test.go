//go:build !swagger

package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSwaggerNotMountedByDefault(t *testing.T) {
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}
