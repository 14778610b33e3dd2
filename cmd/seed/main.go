package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"bookstore/internal/apperr"
	"bookstore/internal/book"
	"bookstore/internal/config"
	"bookstore/internal/logger"
	"bookstore/internal/store"
)

var (
	languages  = []string{"English", "Spanish", "French", "German", "Italian", "Portuguese", "Chinese", "Japanese"}
	publishers = []string{"Penguin", "HarperCollins", "Oxford", "Cambridge", "MIT Press", "Springer", "Wiley", "Elsevier"}
	authors    = []string{"Ada Byron", "Alan Turing", "Grace Hopper", "Edsger Dijkstra", "Barbara Liskov", "Donald Knuth"}
	words      = []string{
		"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
		"Love", "War", "Peace", "Science", "Nature", "Technology", "History", "Future",
		"Past", "Present", "Reality", "Imagination", "Wisdom", "Life", "Death",
		"Light", "Darkness", "World", "Universe", "Time", "Space", "Mind", "Soul",
	}
)

func main() {
	count := flag.Int("count", 100, "Number of books to generate")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Format: cfg.LogFormat, Environment: cfg.Environment, Level: cfg.LogLevel})

	ctx := context.Background()
	gw, err := store.Open(ctx, cfg.Database)
	if err != nil {
		log.Error("cannot open database", "dsn", config.RedactDSN(cfg.DSN), "error", err)
		os.Exit(1)
	}
	defer gw.Close()

	svc := book.NewService(book.NewSQLRepository(gw))
	inserted, err := seed(ctx, svc, *count, rand.New(rand.NewSource(1)), log)
	if err != nil {
		log.Error("seed failed", "inserted", inserted, "error", err)
		os.Exit(1)
	}

	books, err := svc.List(ctx)
	if err != nil {
		log.Error("count books", "error", err)
		os.Exit(1)
	}
	log.Info("seed complete", "inserted", inserted, "total", len(books))
}

// seed inserts count generated books. Books whose isbn already exists are
// skipped, so running it twice is harmless.
func seed(ctx context.Context, svc *book.Service, count int, rng *rand.Rand, log *slog.Logger) (int, error) {
	inserted := 0
	for i := 0; i < count; i++ {
		_, err := svc.Create(ctx, generate(i, rng))
		switch {
		case err == nil:
			inserted++
		case errors.Is(err, apperr.ErrConflict):
			continue
		default:
			return inserted, err
		}

		if (i+1)%1000 == 0 {
			log.Info("seeding", "done", i+1, "of", count)
		}
	}
	return inserted, nil
}

func generate(i int, rng *rand.Rand) book.Book {
	title := fmt.Sprintf("Book Title %d - %s", i+1, pick(rng, words))
	return book.Book{
		ISBN: fmt.Sprintf("978%010d", i+1),
		Fields: book.Fields{
			AmazonURL: fmt.Sprintf("https://www.amazon.com/dp/%010d", i+1),
			Author:    pick(rng, authors),
			Language:  pick(rng, languages),
			Pages:     100 + rng.Intn(800),
			Publisher: pick(rng, publishers),
			Title:     title,
			Year:      1950 + rng.Intn(75),
		},
	}
}

func pick(rng *rand.Rand, from []string) string {
	return from[rng.Intn(len(from))]
}
