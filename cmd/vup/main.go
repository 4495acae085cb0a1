package main

import (
	"os"

	"github.com/lucas-albers-lz4/vup/pkg/exitcodes"
	log "github.com/lucas-albers-lz4/vup/pkg/log"
)

func main() {
	if err := Execute(); err != nil {
		if code, ok := exitcodes.IsExitCodeError(err); ok {
			log.Error("command failed", "error", err, "exitCode", code)
			os.Exit(code)
		}
		log.Error("command failed", "error", err)
		os.Exit(exitcodes.ExitGeneralRuntimeError)
	}
}
