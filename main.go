package main

import (
	"os"

	"cfp-api/core/logger"
	"cfp-api/core/server"
)

// @title CFP API
// @version 1.0
// @description Call for papers backend: submissions, reviews and schedule releases.

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", err)
		os.Exit(1)
	}
}
