package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/quiz-portal/internal/catalog"
	"github.com/yourusername/quiz-portal/internal/config"
	"github.com/yourusername/quiz-portal/internal/handler"
	"github.com/yourusername/quiz-portal/internal/middleware"
	pgRepo "github.com/yourusername/quiz-portal/internal/repository/postgres"
	redisRepo "github.com/yourusername/quiz-portal/internal/repository/redis"
	"github.com/yourusername/quiz-portal/internal/service"
	"github.com/yourusername/quiz-portal/pkg/auth"
	"github.com/yourusername/quiz-portal/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Открываем файловый каталог викторин. Набор идентификаторов
	// сканируется один раз при старте.
	store, err := catalog.NewStore(cfg.Catalog.Dir)
	if err != nil {
		log.Printf("Failed to open quiz catalog: %v", err)
		os.Exit(1)
	}
	log.Printf("Каталог викторин открыт: %s, викторин: %d", cfg.Catalog.Dir, len(store.ListIdentifiers()))

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	resultRepo := pgRepo.NewResultRepo(db)
	verificationRepo := pgRepo.NewEmailVerificationRepo(db)

	attemptRepo, err := redisRepo.NewAttemptRepo(redisClient, cfg.Attempt.TTL)
	if err != nil {
		log.Printf("Failed to initialize AttemptRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем JWT сервис
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Инициализируем отправку почты
	var emailService service.EmailService
	switch cfg.Email.Provider {
	case "resend":
		emailService, err = service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize ResendEmailService: %v", err)
			os.Exit(1)
		}
	default:
		log.Println("Email provider: noop, письма пишутся только в лог")
		emailService = &service.NoopEmailService{}
	}

	// Инициализируем сервисы
	authService := service.NewAuthService(userRepo, resultRepo, verificationRepo, jwtService)
	verificationService, err := service.NewEmailVerificationService(
		userRepo,
		verificationRepo,
		emailService,
		cfg.Email.CodeTTL,
		cfg.Email.ResendCooldown,
		cfg.Email.MaxAttempts,
		cfg.Email.CodePepper,
	)
	if err != nil {
		log.Printf("Failed to initialize EmailVerificationService: %v", err)
		os.Exit(1)
	}
	scoringService := service.NewScoringService(resultRepo, userRepo)
	attemptService := service.NewAttemptService(store, attemptRepo, scoringService)
	ratingService := service.NewRatingService(userRepo, resultRepo, store)

	// Инициализируем обработчики и middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	authHandler := handler.NewAuthHandler(authService, verificationService)
	quizHandler := handler.NewQuizHandler(store, ratingService)
	attemptHandler := handler.NewAttemptHandler(attemptService)
	ratingHandler := handler.NewRatingHandler(ratingService)

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Аутентификация
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)

			// Маршруты, требующие аутентификации
			authedAuth := authGroup.Group("/")
			authedAuth.Use(authMiddleware.RequireAuth())
			{
				authedAuth.POST("/verification/send", authHandler.SendVerificationCode)
				authedAuth.POST("/verification/confirm", authHandler.ConfirmEmail)
				authedAuth.GET("/verification/status", authHandler.VerificationStatus)
			}
		}

		// Пользователи
		users := api.Group("/users")
		users.Use(authMiddleware.RequireAuth())
		{
			users.GET("/me", authHandler.Me)
			users.DELETE("/me", authHandler.DeleteAccount)
		}

		// Таблица рейтинга (публичный маршрут) и личная история
		api.GET("/rating", ratingHandler.GetRatingTable)
		api.GET("/rating/history", authMiddleware.RequireAuth(), ratingHandler.GetMyHistory)

		// Викторины
		quizzes := api.Group("/quizzes")
		{
			quizzes.GET("", quizHandler.ListQuizzes)

			// Группа маршрутов, требующих quizID
			quizWithID := quizzes.Group("/:id")
			quizWithID.Use(middleware.ExtractUintParam("id", "quizID"))
			{
				quizWithID.GET("", quizHandler.GetQuiz)

				// Прохождение начинает аутентифицированный пользователь
				authedQuizzes := quizWithID.Group("")
				authedQuizzes.Use(authMiddleware.RequireAuth())
				{
					authedQuizzes.POST("/attempts", attemptHandler.StartAttempt)
				}

				// Маршруты для администраторов
				adminQuizzes := quizWithID.Group("")
				adminQuizzes.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
				{
					adminQuizzes.DELETE("", quizHandler.DeleteQuiz)
					adminQuizzes.GET("/results/export", quizHandler.ExportQuizResults)
				}
			}

			// Маршрут создания викторины (не требует ID)
			adminCreateQuiz := quizzes.Group("")
			adminCreateQuiz.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
			{
				adminCreateQuiz.POST("", quizHandler.CreateQuiz)
			}
		}

		// Прохождения
		attempts := api.Group("/attempts")
		attempts.Use(authMiddleware.RequireAuth())
		{
			attempts.GET("/:token/question", attemptHandler.CurrentQuestion)
			attempts.POST("/:token/answer", attemptHandler.SubmitAnswer)
			attempts.GET("/:token/result", attemptHandler.AttemptResult)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
