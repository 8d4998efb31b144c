// loaddata 导入食材与标签 JSON 数据，已存在的记录会被跳过。
//
//	go run ./cmd/loaddata -ingredients data/ingredients.json -tags data/tags.json
package main

import (
	"context"
	"flag"
	"io"
	"os"

	"foodgram/internal/config"
	"foodgram/internal/db"
	"foodgram/internal/logging"
	"foodgram/internal/services"

	"gorm.io/gorm"
)

type importer func(ctx context.Context, conn *gorm.DB, r io.Reader) (int, error)

func main() {
	ingredients := flag.String("ingredients", "", "ingredients fixture (JSON)")
	tags := flag.String("tags", "", "tags fixture (JSON)")
	flag.Parse()

	if *ingredients == "" && *tags == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, _ := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	conn, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}

	ctx := context.Background()
	run(ctx, conn, "ingredients", *ingredients, services.ImportIngredients)
	run(ctx, conn, "tags", *tags, services.ImportTags)
}

func run(ctx context.Context, conn *gorm.DB, kind, path string, fn importer) {
	if path == "" {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		logging.Fatal().Err(err).Str("file", path).Msg("Failed to open fixture")
	}
	defer f.Close()

	created, err := fn(ctx, conn, f)
	if err != nil {
		logging.Fatal().Err(err).Str("kind", kind).Msg("Import failed")
	}
	logging.Info().Str("kind", kind).Int("created", created).Msg("Import finished")
}
