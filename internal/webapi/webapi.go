// Package webapi is the HTTP outer shell around the same discover()/
// download() core the terminal UI drives: GET /devices lists attached
// meters, GET /devices/:index/download runs a session against one of
// them and streams the export.
package webapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/accuchek/phd-reader/internal/appconfig"
	"github.com/accuchek/phd-reader/internal/applog"
	"github.com/accuchek/phd-reader/internal/catalog"
	"github.com/accuchek/phd-reader/internal/usbtransport"
	"github.com/accuchek/phd-reader/pkg/phd/phderr"
	"github.com/accuchek/phd-reader/pkg/phd/sample"
	"github.com/accuchek/phd-reader/pkg/phd/session"
)

// Server wires the catalog, logger, and default transfer settings that
// every request handler shares; it holds no per-request state.
type Server struct {
	cat    *catalog.Catalog
	logger *applog.Logger
	cfg    appconfig.Config
}

// NewServer builds a Server ready to register its routes on a gin.Engine.
func NewServer(cfg appconfig.Config, cat *catalog.Catalog, logger *applog.Logger) *Server {
	return &Server{cat: cat, logger: logger, cfg: cfg}
}

// Register mounts the device-discovery and download routes on r.
func (s *Server) Register(r *gin.Engine) {
	r.GET("/devices", s.handleDevices)
	r.GET("/devices/:index/download", s.handleDownload)
}

func (s *Server) handleDevices(c *gin.Context) {
	devices, err := usbtransport.Discover(s.cat, s.logger)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, devices)
}

func (s *Server) handleDownload(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid device index"})
		return
	}

	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "csv" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be json or csv"})
		return
	}

	devices, err := usbtransport.Discover(s.cat, s.logger)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if index >= len(devices) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no device at that index"})
		return
	}
	desc := devices[index]

	adapter, err := usbtransport.Open(desc, s.cfg.Timeout)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	samples, err := session.Download(adapter, s.logger)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	if format == "csv" {
		c.Header("Content-Disposition", `attachment; filename="phd-export.csv"`)
		c.Status(http.StatusOK)
		c.Header("Content-Type", "text/csv")
		if err := sample.WriteCSV(c.Writer, samples); err != nil {
			s.logger.Errorf("webapi: write csv export: %v", err)
		}
		return
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "application/json")
	if err := sample.WriteJSON(c.Writer, samples); err != nil {
		s.logger.Errorf("webapi: write json export: %v", err)
	}
}

func statusFor(err error) int {
	switch {
	case phderr.Is(err, phderr.DeviceNotFound):
		return http.StatusNotFound
	case phderr.Is(err, phderr.Timeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
