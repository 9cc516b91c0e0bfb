package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/boggleduel/server/internal/dict"
	"github.com/boggleduel/server/internal/game"
	"github.com/boggleduel/server/internal/httpserver"
	"github.com/boggleduel/server/internal/players"
	"github.com/boggleduel/server/internal/results"
	"github.com/boggleduel/server/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	words, err := dict.Default()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load dictionary")
	}
	log.Info().Int("words", words.Len()).Msg("dictionary loaded")

	db, err := openDB(getEnv("SQLITE_PATH", "./data/boggle.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	registry, err := players.NewRegistry(db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load player registry")
	}

	res := results.NewStore(db)
	broker := game.NewBroker(registry, words, store.NewSQLite(db, res))
	srv := httpserver.New(broker, registry, httpserver.Options{
		Results: res,
		Auth:    httpserver.NewAuth(db, registry),
	})

	port := getEnv("PORT", "5180")
	log.Info().Str("port", port).Msg("starting boggle server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
