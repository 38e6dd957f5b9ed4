// Command seed fills the development database with demo data.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"musefeed/internal/config"
	"musefeed/internal/database"
	"musefeed/internal/middleware"
	"musefeed/internal/seed"
)

func main() {
	opts := seed.DefaultOptions
	flag.IntVar(&opts.Users, "users", opts.Users, "Number of users to create")
	flag.IntVar(&opts.Media, "media", opts.Media, "Number of tracks to create")
	flag.IntVar(&opts.Posts, "posts", opts.Posts, "Number of posts to create")
	flag.IntVar(&opts.CommentsPerPost, "comments", opts.CommentsPerPost, "Maximum comments per post")
	flag.Float64Var(&opts.LikeRatio, "like-ratio", opts.LikeRatio, "Chance that a user likes a given post")
	flag.Int64Var(&opts.RandSeed, "seed", 0, "Random seed for reproducible content (0 = time based)")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Printf("Target: %d users, %d tracks, %d posts, clean=%v", opts.Users, opts.Media, opts.Posts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, opts.RandSeed)
	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	res, err := s.Run(ctx, opts)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d users, %d tracks, %d posts, %d comments, %d likes",
		len(res.Users), len(res.Media), len(res.Posts), res.Comments, res.Likes)

	token, err := middleware.NewAuthenticator(cfg.JWTSecret).IssueToken(res.Users[0].ID, 24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to issue dev token: %v", err)
	}
	log.Printf("Dev token for %s (24h): %s", res.Users[0].Username, token)
}
