package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/soukhyasn2698/CrackTheSecretCode/internal/room"
	"github.com/soukhyasn2698/CrackTheSecretCode/internal/store"
	"github.com/soukhyasn2698/CrackTheSecretCode/internal/stream"
	"github.com/soukhyasn2698/CrackTheSecretCode/internal/wsserver"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	matches, err := store.OpenMatchStore(getEnv("DB_PATH", "./data/matches.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open match store")
	}
	defer matches.Close()

	feed := stream.New(os.Getenv("KAFKA_ADDR"))
	defer feed.Close()

	srv := wsserver.New(wsserver.Config{
		Registry: room.NewRegistry(),
		Solo:     store.NewMemoryStore(),
		Matches:  matches,
		Feed:     feed,
	})

	port := getEnv("PORT", "3000")
	log.Info().Str("port", port).Msg("starting crack-the-secret-code server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" { return v }
	return def
}
