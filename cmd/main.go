package main

import (
	stdlog "log"
	"os"

	"github.com/yungbote/sprout-backend/internal/app"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
)

func main() {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		stdlog.Fatalf("failed to initialize logger: %v", err)
	}

	a, err := app.New(log)
	if err != nil {
		log.Fatal("failed to initialize app", "error", err)
	}
	defer a.Close()

	if err := a.Run(); err != nil {
		log.Fatal("server exited", "error", err)
	}
}
