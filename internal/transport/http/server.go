package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"docuchat/internal/agent"
	"docuchat/internal/ai"
	appsvc "docuchat/internal/app"
	"docuchat/internal/bootstrap"
	"docuchat/internal/cache"
	"docuchat/internal/platform/rabbitmq"
	"docuchat/internal/repository"
	"docuchat/internal/transport/http/handler"
	"docuchat/internal/transport/http/middleware"
	"docuchat/internal/transport/ws"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	userRepo := repository.NewUserRepository(app.MySQL)
	sessionRepo := repository.NewSessionRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)
	documentRepo := repository.NewDocumentRepository(app.MySQL)
	feedbackRepo := repository.NewFeedbackRepository(app.MySQL)

	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	chatService := appsvc.NewChatService(sessionRepo, messageRepo, documentRepo, historyCache)
	documentService := appsvc.NewDocumentService(sessionRepo, documentRepo)
	feedbackService := appsvc.NewFeedbackService(messageRepo, feedbackRepo)

	// The generation loop: one backend client shared by producer and
	// reviewer, wired at this composition root.
	completer := ai.NewClient(ai.Config{
		BaseURL: app.Config.LLM.BaseURL,
		APIKey:  app.Config.LLM.APIKey,
		Model:   app.Config.LLM.Model,
		Timeout: time.Duration(app.Config.LLM.TimeoutSeconds) * time.Second,
	})
	assembler := agent.NewAssembler(messageRepo, documentRepo, app.Config.Agent.HistoryWindow)
	orchestrator := agent.NewOrchestrator(
		agent.NewProducer(completer),
		agent.NewReviewer(completer),
		app.Config.Agent.MaxAttempts,
		app.Logger,
	)

	turnPublisher := rabbitmq.NewTurnPublisher(app.MQConn, app.Config.RabbitMQ.TurnAuditQueue)
	wsHandler := ws.NewHandler(
		chatService,
		assembler,
		orchestrator,
		messageRepo,
		turnPublisher,
		historyCache,
		app.Config.Auth.JWTSecret,
		app.Logger,
	)

	healthHandler := handler.NewHealthHandler(app)
	authHandler := handler.NewAuthHandler(authService)
	chatHandler := handler.NewChatHandler(chatService)
	documentHandler := handler.NewDocumentHandler(documentService, app.Logger)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService)

	router.GET("/healthz", healthHandler.Check)
	router.GET("/ws/chat", wsHandler.Serve)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	chatGroup := v1.Group("/chat")
	chatGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	chatGroup.POST("/sessions", chatHandler.CreateSession)
	chatGroup.GET("/sessions", chatHandler.ListSessions)
	chatGroup.DELETE("/sessions/:id", chatHandler.DeleteSession)
	chatGroup.GET("/history", chatHandler.GetHistory)

	docGroup := v1.Group("/documents")
	docGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	docGroup.POST("", documentHandler.Upload)
	docGroup.GET("", documentHandler.List)

	feedbackGroup := v1.Group("/feedback")
	feedbackGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	feedbackGroup.POST("", feedbackHandler.Submit)
	feedbackGroup.GET("", feedbackHandler.List)

	return router
}
