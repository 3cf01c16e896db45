package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dwiyanr/examflow/internal/config"
	"github.com/dwiyanr/examflow/internal/database"
	"github.com/dwiyanr/examflow/internal/logger"
	"github.com/dwiyanr/examflow/internal/model"
	"github.com/dwiyanr/examflow/internal/service"
)

// examload publishes exam-definition JSON files into the catalog:
//
//	examload exam1.json [exam2.json ...]
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: examload <definition.json> [...]")
		os.Exit(1)
	}

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	examService := service.NewExamService(rdb, log)

	for _, path := range os.Args[1:] {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Failed to read definition")
		}

		var exam model.ExamDefinition
		if err := json.Unmarshal(raw, &exam); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Invalid definition JSON")
		}

		if err := examService.Publish(ctx, &exam); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Publish failed")
		}

		fmt.Printf("Published %q (%s) with %d questions\n", exam.Title, exam.ID, len(exam.Questions))
	}
}
