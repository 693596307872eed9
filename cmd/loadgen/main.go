package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alecthomas/kong"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rl1809/clock-shop/internal/adapter/storage"
	"github.com/rl1809/clock-shop/internal/core/domain"
	"github.com/rl1809/clock-shop/internal/core/service"
)

var cli struct {
	RedisAddr string `name:"redis-addr" default:"localhost:6379" env:"REDIS_ADDR" help:"Redis address."`
	Shoppers  int    `default:"50" help:"Concurrent shoppers."`
	Clicks    int    `default:"20" help:"Add-to-cart clicks per shopper on the shared session."`
	ProductID string `name:"product" default:"vintage-grandfather-clock" help:"Catalog product every shopper adds."`
}

func main() {
	kctx := kong.Parse(&cli, kong.Description("Drives concurrent cart traffic and checks the totals."))

	ctx := context.Background()

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{Addr: cli.RedisAddr})
	kctx.FatalIfErrorf(rdb.Ping(ctx).Err(), "failed to connect redis")
	defer rdb.Close()

	// Initialize catalog and service
	catalog := storage.NewMemoryCatalog()
	products, err := service.LoadCatalog(service.SeedCatalog(), domain.DefaultCurrency, true, zap.NewNop())
	kctx.FatalIfErrorf(err, "failed to load catalog")
	kctx.FatalIfErrorf(catalog.UpsertProducts(ctx, products), "failed to seed catalog")

	product, err := catalog.GetProduct(ctx, domain.ProductID(cli.ProductID))
	kctx.FatalIfErrorf(err, "unknown product %q", cli.ProductID)

	redisAdapter := storage.NewRedisAdapter(rdb)
	cartService := service.NewCartService(redisAdapter, catalog, zap.NewNop(), service.CartServiceConfig{
		SessionTTL: 10 * time.Minute,
		QueueSize:  cli.Shoppers * cli.Clicks * 4,
	})
	defer cartService.Close()

	// Drain the event queue in background
	var events atomic.Int64
	go func() {
		for range cartService.GetEventQueue() {
			events.Add(1)
		}
	}()

	shared, err := cartService.CreateSession(ctx)
	kctx.FatalIfErrorf(err, "failed to create shared session")

	// Counters
	var added, duplicates, failed atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < cli.Shoppers; i++ {
		wg.Add(1)
		go func(shopper int) {
			defer wg.Done()

			// Every shopper replays its first click once; the replay must be rejected.
			for click := 0; click <= cli.Clicks; click++ {
				requestID := fmt.Sprintf("shopper-%d-click-%d", shopper, click)
				if click == cli.Clicks {
					requestID = fmt.Sprintf("shopper-%d-click-0", shopper)
				}

				_, err := cartService.AddToCart(ctx, shared.SessionID, product.ID, requestID)
				switch {
				case err == nil:
					added.Add(1)
				case errors.Is(err, service.ErrDuplicateRequest):
					duplicates.Add(1)
				default:
					failed.Add(1)
				}
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	view, err := cartService.GetCart(ctx, shared.SessionID)
	kctx.FatalIfErrorf(err, "failed to read cart")
	snapshot, err := redisAdapter.LoadSnapshot(ctx, shared.SessionID)
	kctx.FatalIfErrorf(err, "failed to read snapshot")

	expected := cli.Shoppers * cli.Clicks
	expectedTotal := product.Price.Mul(expected)

	// Results
	fmt.Println("========== CART LOAD RESULTS ==========")
	fmt.Printf("Shoppers:         %d\n", cli.Shoppers)
	fmt.Printf("Clicks each:      %d (+1 replay)\n", cli.Clicks)
	fmt.Printf("Added:            %d\n", added.Load())
	fmt.Printf("Duplicates:       %d\n", duplicates.Load())
	fmt.Printf("Failed:           %d\n", failed.Load())
	fmt.Printf("Events seen:      %d\n", events.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("=======================================")

	ok := true
	check := func(cond bool, pass, fail string) {
		if cond {
			fmt.Println("PASS: " + pass)
			return
		}
		fmt.Println("FAIL: " + fail)
		ok = false
	}

	check(view.TotalItems == expected,
		fmt.Sprintf("cart holds %d units", expected),
		fmt.Sprintf("expected %d units, got %d", expected, view.TotalItems))
	check(int(duplicates.Load()) == cli.Shoppers,
		"every replayed click was rejected",
		fmt.Sprintf("expected %d duplicates, got %d", cli.Shoppers, duplicates.Load()))
	check(view.DisplayTotal == expectedTotal.Format(),
		"total is "+expectedTotal.Format(),
		fmt.Sprintf("expected total %s, got %s", expectedTotal.Format(), view.DisplayTotal))
	check(len(snapshot.State.Items) == 1 && snapshot.State.Items[0].Quantity == expected,
		"snapshot matches the live cart",
		fmt.Sprintf("snapshot out of date: %+v", snapshot.State.Items))

	if !ok {
		os.Exit(1)
	}
}
