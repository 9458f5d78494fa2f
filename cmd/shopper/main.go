// Command shopper is a terminal catalog search. Each stdin line replaces the
// query; results print after the debounce window once typing pauses.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/freshmart/storefront/internal/catalog"
	"github.com/freshmart/storefront/internal/storeapi"
)

func main() {
	_ = godotenv.Load()

	backendURL := flag.String("backend", envOr("BACKEND_URL", "http://localhost:5000"), "backend base URL")
	category := flag.String("category", catalog.AllCategories, "category id or \"all\"")
	debounce := flag.Duration("debounce", catalog.DefaultDebounce, "quiet period before a search")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	service := catalog.NewService(storeapi.NewClient(*backendURL, 10*time.Second))
	searcher := service.Search(ctx, *category, *debounce)
	defer searcher.Close()

	go func() {
		for res := range searcher.Results() {
			if res.Err != nil {
				logger.Error("search", slog.String("query", res.Query), slog.Any("error", res.Err))
				continue
			}
			fmt.Printf("%q: %d product(s)\n", res.Query, len(res.Products))
			for _, p := range res.Products {
				fmt.Printf("  #%d %-30s $%.2f/%s  stock %d\n", p.ID, p.Name, p.Price, p.Unit, p.Stock)
			}
		}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
	}()

	searcher.Update("")
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				time.Sleep(*debounce + time.Second)
				return
			}
			searcher.Update(line)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
