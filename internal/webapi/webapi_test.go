package webapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/accuchek/phd-reader/internal/appconfig"
	"github.com/accuchek/phd-reader/internal/catalog"
	"github.com/accuchek/phd-reader/pkg/phd/phderr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*gin.Engine, *Server) {
	t.Helper()
	cat, err := catalog.Parse([]byte("[[devices]]\nvendor_id = 1\nproduct_id = 2\nname = \"Test Meter\"\n"), nil)
	if err != nil {
		t.Fatalf("catalog.Parse: %v", err)
	}
	cfg := appconfig.Config{Format: "json"}
	s := NewServer(cfg, cat, nil)
	r := gin.New()
	s.Register(r)
	return r, s
}

func TestHandleDownloadRejectsBadIndex(t *testing.T) {
	r, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/devices/not-a-number/download", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleDownloadRejectsUnknownFormat(t *testing.T) {
	r, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/devices/0/download?format=xml", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusForMapsKinds(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(phderr.New(phderr.DeviceNotFound, "op", "msg")))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(phderr.New(phderr.Timeout, "op", "msg")))
	assert.Equal(t, http.StatusBadGateway, statusFor(phderr.New(phderr.IO, "op", "msg")))
}
