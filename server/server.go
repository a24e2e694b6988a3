package server

import (
	"context"
	"time"

	"github.com/Piero-design/VETAQP/config"
	"github.com/Piero-design/VETAQP/handlers"
	"github.com/Piero-design/VETAQP/kafka"
	"github.com/Piero-design/VETAQP/limiter"
	custommiddleware "github.com/Piero-design/VETAQP/middleware"
	"github.com/Piero-design/VETAQP/models"
	"github.com/Piero-design/VETAQP/redis"
	"github.com/Piero-design/VETAQP/services"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Echo   *echo.Echo
	DB     *gorm.DB
	Config *config.Config
	Redis  *redis.RedisClient

	Producer *kafka.Producer
	Consumer *kafka.Consumer

	AuthHandler          *handlers.AuthHandler
	PetHandler           *handlers.PetHandler
	ProductHandler       *handlers.ProductHandler
	InventoryHandler     *handlers.InventoryHandler
	OrderHandler         *handlers.OrderHandler
	PaymentHandler       *handlers.PaymentHandler
	MembershipHandler    *handlers.MembershipHandler
	AppointmentHandler   *handlers.AppointmentHandler
	NotificationHandler  *handlers.NotificationHandler
	DashboardHandler     *handlers.DashboardHandler
	ChatHandler          *handlers.ChatHandler
	ChatWebSocketHandler *handlers.ChatWebSocketHandler

	cancelConsumer context.CancelFunc
}

func NewServer() *Server {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := models.AutoMigrateAll(db); err != nil {
		log.Fatal("Failed to auto-migrate database:", err)
	}

	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to redis:", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.PATCH},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentLength},
		MaxAge:           86400,
	}))

	// Kafka is optional: with no brokers configured, order and payment
	// events are simply not published.
	var producer *kafka.Producer
	var consumer *kafka.Consumer
	var cancelConsumer context.CancelFunc
	if len(cfg.Kafka.Brokers) > 0 {
		saramaCfg, err := kafka.NewSaramaConfig(&cfg.Kafka)
		if err != nil {
			log.Fatal("Failed to build kafka config:", err)
		}
		producer, err = kafka.NewProducer(cfg.Kafka.Brokers, saramaCfg)
		if err != nil {
			log.Fatal("Failed to connect to kafka:", err)
		}

		consumerCfg, err := kafka.NewSaramaConfig(&cfg.Kafka)
		if err != nil {
			log.Fatal("Failed to build kafka consumer config:", err)
		}
		consumer, err = kafka.NewConsumer(
			cfg.Kafka.Brokers,
			cfg.Kafka.GroupID,
			[]string{kafka.TopicOrderCreated, kafka.TopicPaymentCompleted},
			consumerCfg,
			kafka.NewNotificationEventHandler(db),
		)
		if err != nil {
			log.Fatal("Failed to start kafka consumer:", err)
		}

		var ctx context.Context
		ctx, cancelConsumer = context.WithCancel(context.Background())
		go func() {
			if err := consumer.Start(ctx); err != nil {
				log.Error("Kafka consumer stopped:", err)
			}
		}()
	}

	authService := services.NewAuthService(db, &cfg.Auth)
	oauthService := services.NewOAuthService(&cfg.Auth)
	chatService := services.NewChatService(db)
	orderService := services.NewOrderService(db, producer)

	s := &Server{
		Echo:                 e,
		DB:                   db,
		Config:               &cfg,
		Redis:                redisClient,
		Producer:             producer,
		Consumer:             consumer,
		AuthHandler:          handlers.NewAuthHandler(authService, oauthService),
		PetHandler:           handlers.NewPetHandler(db),
		ProductHandler:       handlers.NewProductHandler(db),
		InventoryHandler:     handlers.NewInventoryHandler(db),
		OrderHandler:         handlers.NewOrderHandler(orderService),
		PaymentHandler:       handlers.NewPaymentHandler(db, producer),
		MembershipHandler:    handlers.NewMembershipHandler(db),
		AppointmentHandler:   handlers.NewAppointmentHandler(db),
		NotificationHandler:  handlers.NewNotificationHandler(db),
		DashboardHandler:     handlers.NewDashboardHandler(db),
		ChatHandler:          handlers.NewChatHandler(chatService),
		ChatWebSocketHandler: handlers.NewChatWebSocketHandler(db, redisClient),
		cancelConsumer:       cancelConsumer,
	}

	authMiddleware := custommiddleware.AuthMiddleware(authService)
	staffMiddleware := custommiddleware.StaffMiddleware()

	// Login throttles on a sliding window, registration on a fixed one.
	loginLimiter := custommiddleware.NewRateLimitMiddleware(
		limiter.NewManager(redisClient.Client, &limiter.SlidingWindowStrategy{}),
		custommiddleware.RateLimitConfig{Limit: 10, Window: time.Minute},
	)
	registerLimiter := custommiddleware.NewRateLimitMiddleware(
		limiter.NewManager(redisClient.Client, &limiter.FixedWindowStrategy{}),
		custommiddleware.RateLimitConfig{Limit: 5, Window: time.Minute},
	)
	s.SetupRoutes(authMiddleware, staffMiddleware, loginLimiter, registerLimiter)
	return s
}

func (s *Server) Start(addr string) {
	log.Fatal(s.Echo.Start(addr))
}

// Shutdown stops the consumer loop and releases broker, cache and http
// resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancelConsumer != nil {
		s.cancelConsumer()
	}
	if s.Consumer != nil {
		if err := s.Consumer.Close(); err != nil {
			log.Error("Failed to close kafka consumer:", err)
		}
	}
	if s.Producer != nil {
		if err := s.Producer.Close(); err != nil {
			log.Error("Failed to close kafka producer:", err)
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Error("Failed to close redis:", err)
		}
	}
	return s.Echo.Shutdown(ctx)
}
