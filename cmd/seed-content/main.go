package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/stemsi/sitesafe-learn/internal/config"
	"github.com/stemsi/sitesafe-learn/internal/content"
	"github.com/stemsi/sitesafe-learn/internal/database"
	"github.com/stemsi/sitesafe-learn/internal/logger"
	"github.com/stemsi/sitesafe-learn/internal/repository"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Validate the embedded content without writing to the database")
	prune := flag.Bool("prune", false, "Delete stored pages that are no longer in the embedded content")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	pages, err := content.EmbeddedPages()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read embedded content")
	}
	catalog, err := content.FromPages(pages)
	if err != nil {
		log.Fatal().Err(err).Msg("Embedded content is invalid")
	}

	fmt.Println("=== Content ===")
	for _, s := range catalog.Summaries() {
		fmt.Printf("  %-7s %-28s checks=%d quiz=%d\n", s.Kind, s.Slug, s.CheckCount, s.QuizLength)
	}
	if *dryRun {
		fmt.Printf("\n%d page(s) valid. Dry run, nothing written.\n", catalog.Len())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	repo := repository.NewContentRepository(pool)
	if err := repo.UpsertPages(ctx, pages); err != nil {
		log.Fatal().Err(err).Msg("Failed to upsert pages")
	}

	if *prune {
		keep := make([]string, len(pages))
		for i, p := range pages {
			keep[i] = p.Slug
		}
		removed, err := repo.DeletePagesExcept(ctx, keep)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to prune pages")
		}
		fmt.Printf("Pruned %d stale page(s)\n", removed)
	}

	fmt.Printf("\nSeed completed! Upserted %d page(s).\n", len(pages))
}
