package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/alimikegami/fashion-store/cart-service/config"
	"github.com/alimikegami/fashion-store/cart-service/internal/controller"
	circuitbreaker "github.com/alimikegami/fashion-store/cart-service/internal/infrastructure/circuit-breaker"
	"github.com/alimikegami/fashion-store/cart-service/internal/infrastructure/message-queue/kafka"
	"github.com/alimikegami/fashion-store/cart-service/internal/infrastructure/tracing"
	localmiddleware "github.com/alimikegami/fashion-store/cart-service/internal/middleware"
	"github.com/alimikegami/fashion-store/cart-service/internal/repository"
	"github.com/alimikegami/fashion-store/cart-service/internal/service"
	"github.com/alimikegami/fashion-store/cart-service/pkg/response"
	"github.com/go-co-op/gocron/v2"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
)

type App struct {
	DB     *mongo.Database
	Redis  *redis.Client
	Config *config.Config
	Server *echo.Echo
}

func (app *App) Start() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = logger
	zerolog.DefaultContextLogger = &logger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := echo.New()
	tracer, shutdownTracing, err := tracing.NewTracer(app.Config.TracingConfig.CollectorHost)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize tracing, spans will not be exported")
	}

	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error().Err(err).Msg("Failed to shutdown tracing")
		}
	}()

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// span creation and naming
			ctx, span := tracer.Start(c.Request().Context(), fmt.Sprintf("[%s] %s", c.Request().Method, c.Path()))
			defer span.End()

			// add the context to the request
			req := c.Request()
			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	})

	// Used empty string so that metrics are not prefixed with the service name making it easier to aggregate across services
	e.Use(echoprometheus.NewMiddleware(""))

	go func() {
		metrics := echo.New()
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(fmt.Sprintf(":%s", app.Config.MetricsPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start metrics server")
		}
	}()

	e.Use(localmiddleware.Logger)

	g := e.Group("/api/v1")

	isLoggedIn := localmiddleware.IsLoggedIn(app.Config.JWTSecret)
	isLoggedInQuery := localmiddleware.IsLoggedInQuery(app.Config.JWTSecret)

	cb := circuitbreaker.CreateCircuitBreaker("cart-service-cache", 30*time.Second)
	cacheRepo := repository.CreateNewRedisCacheRepository(app.Redis, cb)
	productRepo := repository.CreateNewMongoDBProductRepository(app.DB)
	userRepo := repository.CreateNewMongoDBUserRepository(app.DB)

	rateLimit := localmiddleware.CartRateLimit(cacheRepo, app.Config.CartConfig.RateLimitPerMinute, time.Minute)

	kafkaReader := kafka.CreateKafkaReader(app.Config)
	defer kafkaReader.Close()

	kafkaProducer, err := kafka.CreateKafkaProducer(app.Config)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Kafka")
	}
	defer kafkaProducer.Close()

	publisher := service.CreateKafkaEventPublisher(kafkaProducer, 3, 200*time.Millisecond)
	catalog := service.CreateProductCatalogService(productRepo, cacheRepo, kafkaReader, app.Config.CartConfig.ProductCacheTTL)
	cartSvc := service.CreateCartService(userRepo, catalog, cacheRepo, publisher)
	wishlistSvc := service.CreateWishlistService(userRepo, catalog, cartSvc, publisher)

	go catalog.ConsumeEvent(ctx)

	s, err := gocron.NewScheduler()
	if err != nil {
		panic(err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(
			app.Config.CartConfig.PruneInterval,
		),
		gocron.NewTask(
			cartSvc.PruneInactiveItems,
		),
	)
	if err != nil {
		panic(err)
	}

	s.Start()
	defer s.Shutdown()

	controller.CreateCartController(g, cartSvc, isLoggedIn, rateLimit)
	controller.CreateCartSyncController(g, cartSvc, isLoggedInQuery)
	controller.CreateWishlistController(g, wishlistSvc, isLoggedIn, rateLimit)

	g.GET("/ping", func(c echo.Context) error {
		return response.WriteSuccessResponse(c, "Hello, World!", nil)
	})

	app.Server = e

	if err := e.Start(fmt.Sprintf(":%s", app.Config.ServicePort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}

func (app *App) StopServer() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return app.Server.Shutdown(ctx)
}
