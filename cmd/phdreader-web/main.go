// Command phdreader-web is a thin HTTP shell around the same core
// phdreader's terminal UI drives, for scripted or remote callers.
package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/accuchek/phd-reader/internal/appconfig"
	"github.com/accuchek/phd-reader/internal/applog"
	"github.com/accuchek/phd-reader/internal/catalog"
	"github.com/accuchek/phd-reader/internal/webapi"
)

func main() {
	cfg, err := appconfig.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "phdreader-web:", err)
		os.Exit(2)
	}

	logger := applog.Get()
	defer logger.Close()

	cat, err := catalog.Load(cfg.CatalogPath, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "phdreader-web:", err)
		os.Exit(1)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	webapi.NewServer(cfg, cat, logger).Register(r)

	addr := os.Getenv("PHD_WEB_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	if err := r.Run(addr); err != nil {
		fmt.Fprintln(os.Stderr, "phdreader-web:", err)
		os.Exit(1)
	}
}
