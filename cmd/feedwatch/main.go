package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bme-bharat/communityfeed/internal/api"
	"github.com/bme-bharat/communityfeed/internal/cache"
	"github.com/bme-bharat/communityfeed/internal/config"
	"github.com/bme-bharat/communityfeed/internal/enrich"
	"github.com/bme-bharat/communityfeed/internal/events"
	"github.com/bme-bharat/communityfeed/internal/feed"
	"github.com/bme-bharat/communityfeed/internal/logging"
	"github.com/bme-bharat/communityfeed/internal/models"
	"github.com/bme-bharat/communityfeed/internal/reactions"
	"github.com/bme-bharat/communityfeed/internal/resolver"
	"github.com/bme-bharat/communityfeed/internal/search"
)

func main() {
	cfg := config.Load()

	level := logging.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	logger := logging.New(level)

	if cfg.API.Endpoint == "" {
		logger.Error("No endpoint configured, set -endpoint or FEED_ENDPOINT")
		os.Exit(1)
	}

	client, err := api.New(api.Config{
		Endpoint:           cfg.API.Endpoint,
		Token:              cfg.API.Token,
		UserID:             cfg.API.UserID,
		Timeout:            cfg.API.Timeout,
		MinRequestInterval: cfg.API.MinRequestInterval,
	}, logger)
	if err != nil {
		logger.Error("Failed to create API client", logging.WithField("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resolverCache := newCache(cfg, logger)
	defer resolverCache.Close()

	res, err := newResolver(ctx, cfg, client)
	if err != nil {
		logger.Error("Failed to create resolver", logging.WithField("error", err.Error()))
		os.Exit(1)
	}
	cached := resolver.NewCached(res, resolverCache, cfg.Media.SignedURLTTL*9/10, cfg.Cache.CommentTTL)

	enricher := enrich.New(cached, logger)
	bus := events.NewBus(logger)
	defer bus.Close()

	engine := reactions.NewEngine(client, bus, cfg.API.Timeout, logger)
	defer engine.Wait()

	kinds := []feed.Kind{feed.KindAll, feed.KindLatest, feed.KindTrending}
	controllers := make(map[feed.Kind]*feed.Controller, len(kinds))
	for _, kind := range kinds {
		controller := feed.NewController(feed.Config{
			Kind:      kind,
			PageLimit: cfg.Feed.PageLimit,
		}, client, enricher, logger)
		controllers[kind] = controller

		sub, err := bus.Subscribe(ctx)
		if err != nil {
			logger.Error("Failed to subscribe feed view", logging.WithField("error", err.Error()))
			os.Exit(1)
		}
		reconciler := events.NewReconciler(controller, logger)
		go reconciler.Run(ctx, sub)
	}

	all := controllers[feed.KindAll]
	overlay := search.NewOverlay(client, enricher, all, cfg.Search.Debounce, cfg.API.Timeout, logger)

	if err := all.Load(ctx); err != nil {
		logger.Error("Initial feed load failed", logging.WithField("error", err.Error()))
		os.Exit(1)
	}
	printPosts(all)

	if all.HasMore() {
		all.LoadMore(ctx)
		printPosts(all)
	}

	if cfg.API.UserID != "" {
		reactToNewest(all, engine, logger)
	}
	if cfg.Search.Query != "" {
		runSearch(overlay, all, cfg.Search.Query, cfg.Search.Debounce, logger)
	}

	logger.Info("Watching feed, Ctrl-C to exit")
	<-ctx.Done()
	logger.Info("Shutting down")
}

// reactToNewest toggles a Like on the newest loaded post. The view updates
// optimistically; confirmation settles in the background.
func reactToNewest(view *feed.Controller, engine *reactions.Engine, logger *logging.Logger) {
	posts := view.Posts()
	if len(posts) == 0 {
		return
	}

	target, ok := engine.Select(view, posts[0].ForumID, models.ReactionLike)
	if !ok {
		return
	}
	logger.Info("Reacted to newest post", logging.WithFields(map[string]interface{}{
		"post_id":  posts[0].ForumID,
		"reaction": string(target),
	}))
	printPosts(view)
}

// runSearch issues one overlay query, shows the swapped results, then
// reverts to the paginated feed.
func runSearch(overlay *search.Overlay, view *feed.Controller, query string, debounce time.Duration, logger *logging.Logger) {
	logger.Info("Searching", logging.WithField("query", query))
	overlay.SetQuery(query)

	// The overlay swaps the rendered set asynchronously after the debounce
	// quiet period; give the query time to land before printing.
	time.Sleep(debounce + 2*time.Second)
	printPosts(view)

	overlay.SetQuery("")
	logger.Info("Search cleared, feed restored")
}

func newCache(cfg *config.Config, logger *logging.Logger) cache.Cache {
	if cfg.Cache.Backend == "redis" {
		redisCache, err := cache.NewRedis(cache.RedisConfig{Addr: cfg.Cache.RedisAddr}, cfg.Media.SignedURLTTL)
		if err == nil {
			logger.Info("Using Redis resolver cache", logging.WithField("addr", cfg.Cache.RedisAddr))
			return redisCache
		}
		logger.Warn("Redis unavailable, falling back to memory cache", logging.WithField("error", err.Error()))
	}
	return cache.NewMemory(cfg.Media.SignedURLTTL)
}

func newResolver(ctx context.Context, cfg *config.Config, client *api.Client) (resolver.Resolver, error) {
	apiResolver := resolver.NewAPI(client)
	if !cfg.Media.Presign {
		return apiResolver, nil
	}
	return resolver.NewS3(ctx, cfg.Media.AWSRegion, cfg.Media.Bucket, cfg.Media.SignedURLTTL, apiResolver)
}

func printPosts(controller *feed.Controller) {
	posts := controller.Posts()
	fmt.Printf("--- %d posts ---\n", len(posts))
	for _, p := range posts {
		body := p.Body
		if len(body) > 60 {
			body = body[:60] + "..."
		}
		fmt.Printf("%s  %-20s  %3d comments  %3d reactions  %s\n",
			p.CreatedAt.Format("2006-01-02 15:04"), p.Author.Name, p.CommentCount, p.TotalReactions, body)
	}
}
