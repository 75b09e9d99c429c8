package main

import (
	"context"
	"flag"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"logistics-scheduler-service/internal/adapters/docstore"
	"logistics-scheduler-service/internal/config"
	"logistics-scheduler-service/internal/platform/db"
)

func main() {
	configPath := flag.String("config", "", "config file (YAML)")
	seedPath := flag.String("seed", "", "JSON file of documents to load after creating the schema")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	pool, err := db.Open(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	if err := initAndSeed(ctx, pool, *seedPath, cfg.Backup.ChunkSize); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(ctx context.Context, pool *pgxpool.Pool, seedPath string, chunkSize int) error {
	log.Println("Initializing database schema...")
	if err := docstore.InitSchema(ctx, pool); err != nil {
		return err
	}
	log.Println("Schema ready.")

	if seedPath == "" {
		return nil
	}

	log.Println("Seeding database...")
	n, err := docstore.SeedFromJSON(ctx, docstore.NewPostgresStore(pool), seedPath, chunkSize)
	if err != nil {
		return err
	}
	log.Printf("Seeding complete: %d documents.", n)

	return nil
}
