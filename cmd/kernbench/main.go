// cmd/kernbench/main.go
package main

import (
	"os"

	"github.com/mwiater/kernbench/internal/appconfig"
	cmd "github.com/mwiater/kernbench/internal/cli"
	"github.com/mwiater/kernbench/internal/logging"
)

// Set through -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	loadConfig     = appconfig.Load
	initLogging    = logging.Init
	closeLogging   = logging.Close
	setVersionInfo = cmd.SetVersionInfo
	executeCmd     = cmd.Execute
	exit           = os.Exit
)

// main wires logging from the default config file, when one exists, and
// hands off to the cobra root command.
func main() {
	cfg, err := loadConfig("")
	if err != nil {
		cfg = appconfig.Config{}
	}
	if err := initLogging(cfg.LogFilePath()); err != nil {
		_ = initLogging("")
	}
	setVersionInfo(version, commit, date)

	err = executeCmd()
	_ = closeLogging()
	if err != nil {
		exit(1)
	}
}
