// Command phdreader is the terminal shell: pick a discovered Accu-Chek
// meter, download its glucose history, and export it to JSON or CSV.
package main

import (
	"fmt"
	"os"

	"github.com/accuchek/phd-reader/internal/appconfig"
	"github.com/accuchek/phd-reader/internal/applog"
	"github.com/accuchek/phd-reader/internal/catalog"
	"github.com/accuchek/phd-reader/internal/cli/ui"
)

func main() {
	cfg, err := appconfig.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "phdreader:", err)
		os.Exit(2)
	}

	logger := applog.Get()
	defer logger.Close()

	cat, err := catalog.Load(cfg.CatalogPath, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "phdreader:", err)
		os.Exit(1)
	}

	if err := ui.Run(cfg, cat, logger); err != nil {
		fmt.Fprintln(os.Stderr, "phdreader:", err)
		os.Exit(1)
	}
}
