// Command seed fills a development environment with demo data.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"scribble/internal/config"
	"scribble/internal/database"
	"scribble/internal/repository"
	"scribble/internal/seed"
	"scribble/internal/store"
)

func main() {
	numCreators := flag.Int("creators", 20, "Number of top creators to write")
	numFeed := flag.Int("feed", 50, "Number of feed posts to create (mongo feed backend only)")
	numLocal := flag.Int("local", 10, "Number of local posts to create")
	author := flag.String("author", "", "Author of the local posts (random when empty)")
	draftEvery := flag.Int("draft-every", 4, "Archive every n-th local post; 0 disables")
	seedValue := flag.Int64("seed", time.Now().UnixNano(), "Faker seed")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	s := seed.NewSeeder(seed.NewFactory(*seedValue), seed.Options{
		Creators:   *numCreators,
		FeedPosts:  *numFeed,
		LocalPosts: *numLocal,
		Author:     *author,
		DraftEvery: *draftEvery,
	})

	usernames, err := s.WriteCreators(cfg.CreatorsFile)
	if err != nil {
		log.Fatalf("Creator seeding failed: %v", err)
	}

	if cfg.FeedBackend == config.FeedMongo {
		db, err := database.ConnectMongo(ctx, cfg.MongoURL, cfg.MongoDB)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer func() { _ = db.Client().Disconnect(ctx) }()

		if _, err := s.SeedFeed(ctx, repository.NewMongoFeedRepository(repository.FeedCollection(db)), usernames); err != nil {
			log.Fatalf("Feed seeding failed: %v", err)
		}
	} else {
		log.Printf("Feed backend is %q; skipping feed posts", cfg.FeedBackend)
	}

	st, err := store.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer func() { _ = st.Close() }()

	if _, err := s.SeedLocal(ctx, repository.NewPostRepository(ctx, st)); err != nil {
		log.Fatalf("Local post seeding failed: %v", err)
	}

	log.Printf("Seeding complete (seed %d)", *seedValue)
}
