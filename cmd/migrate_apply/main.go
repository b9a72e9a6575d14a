package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"todo_webapp/internal/db"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/migrations"

	"github.com/joho/godotenv"
)

func main() {
	apply := flag.Bool("apply", false, "apply migrations (default only lists them)")
	flag.Parse()

	_ = godotenv.Load()
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_JSON") == "true")

	if !*apply {
		names, err := migrations.Names()
		if err != nil {
			logger.Fatal("list migrations", "error", err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		logger.Fatal("connect", "error", err)
	}
	defer pool.Close()

	err = migrations.Apply(ctx, pool, func(name string) {
		fmt.Printf("applied %s\n", name)
	})
	if err != nil {
		logger.Fatal("migrate", "error", err)
	}
}
