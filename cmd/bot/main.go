package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/avdeev/planner-bot/internal/bot"
	"github.com/avdeev/planner-bot/internal/config"
	"github.com/avdeev/planner-bot/internal/scheduler"
	"github.com/avdeev/planner-bot/internal/storage"
	"github.com/avdeev/planner-bot/internal/telegram"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	interval := flag.Int("interval", 0, "Reminder check interval in seconds (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Apply CLI flag overrides
	if *interval > 0 {
		cfg.Scheduler.Interval = *interval
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		fmt.Fprintf(os.Stderr, "Tip: Set TELEGRAM_BOT_TOKEN environment variable or add it to config file\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("[main] Interrupted. Shutting down...")
		cancel()
	}()

	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	defer connectCancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to MongoDB: %v\n", err)
		os.Exit(1)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error pinging MongoDB: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Printf("[main] Mongo disconnect failed: %v", err)
		}
	}()

	db := client.Database(cfg.Mongo.Database)
	notes := storage.NewMongoNoteStore(db)
	tasks := storage.NewMongoTaskStore(db)

	tg := telegram.NewClient(cfg.Telegram.Token)
	b := bot.New(tg, notes, tasks)

	sched := scheduler.New(tasks, tg, time.Duration(cfg.Scheduler.Interval)*time.Second)
	go func() {
		if err := sched.Run(ctx); err != nil {
			log.Printf("[main] Scheduler stopped: %v", err)
		}
	}()

	log.Println("[main] Bot started, polling for updates...")
	if err := poll(ctx, tg, b, cfg.Telegram.PollTimeout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// poll runs the long-polling dispatch loop. A failed interaction is logged
// and never stops the loop.
func poll(ctx context.Context, tg *telegram.Client, b *bot.Bot, timeout int) error {
	var offset int64

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		updates, err := tg.GetUpdates(ctx, offset, timeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("[main] getUpdates failed: %v", err)
			time.Sleep(3 * time.Second)
			continue
		}

		for _, upd := range updates {
			offset = upd.UpdateID + 1
			if err := b.HandleUpdate(ctx, upd); err != nil {
				log.Printf("[main] update %d failed: %v", upd.UpdateID, err)
			}
		}
	}
}
