package router

import (
	"log"
	"time"

	"upline/config"
	"upline/internal/domain"
	"upline/internal/handler"
	"upline/internal/middleware"
	"upline/internal/repository"
	"upline/internal/service"
	"upline/internal/ws"
	"upline/pkg/cloudinary"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Skip gin.Logger() to reduce log noise; use gin.Default() if you need request logging
	r.Use(middleware.Metrics())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	codeRepo := repository.NewPackageCodeRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)

	hub := ws.NewHub()

	// Services
	notifSvc := service.NewNotificationService(notificationRepo, hub)
	commissionSvc := service.NewCommissionService(userRepo, txRepo, notifSvc, domain.DefaultCommissionSchedule())
	qualificationSvc := service.NewQualificationService(userRepo)
	treeSvc := service.NewTreeService(userRepo)
	var mailer *service.EmailService
	if cfg.SMTP.Host != "" {
		mailer = service.NewEmailService(&cfg.SMTP)
	} else {
		log.Printf("[mail] outbound email disabled: set SMTP_HOST to enable")
	}
	authSvc := service.NewAuthService(cfg, userRepo, codeRepo, txRepo, notifSvc, commissionSvc, mailer)
	packageSvc := service.NewPackageService(userRepo, packageRepo, txRepo, notifSvc, commissionSvc)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	meHandler := handler.NewMeHandler(userRepo, cloud)
	packageHandler := handler.NewPackageHandler(packageRepo, packageSvc)
	codeHandler := handler.NewCodeHandler(codeRepo, packageRepo)
	txHandler := handler.NewTransactionHandler(txRepo)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	genealogyHandler := handler.NewGenealogyHandler(treeSvc, qualificationSvc)
	withdrawalHandler := handler.NewWithdrawalHandler(userRepo, withdrawalRepo, txRepo, notifSvc)
	adminHandler := handler.NewAdminHandler(userRepo, txRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)
	adminMw := middleware.RequireRole(domain.RoleAdmin)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws/notifications", ws.UpgradeNotificationsWS(&cfg.JWT, hub))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
			authGroup.POST("/forgot-password", authHandler.ForgotPassword)
			authGroup.POST("/reset-password/:code", authHandler.ResetPassword)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", meHandler.GetProfile)
			me.PATCH("/profile", meHandler.UpdateProfile)
			me.POST("/avatar", meHandler.UploadAvatar)
			me.GET("/summary", meHandler.GetSummary)
			me.GET("/transactions", txHandler.ListMine)
			me.GET("/notifications", notificationHandler.List)
			me.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
		}

		genealogy := api.Group("/genealogy")
		genealogy.Use(authMw)
		{
			genealogy.GET("/tree", genealogyHandler.GetTree)
			genealogy.GET("/qualification", genealogyHandler.CheckQualification)
		}

		packages := api.Group("/packages")
		{
			packages.GET("", packageHandler.List)
			packages.POST("", authMw, adminMw, packageHandler.Create)
			packages.PUT("/upgrade", authMw, packageHandler.Upgrade)
		}

		withdrawals := api.Group("/withdrawals")
		withdrawals.Use(authMw)
		{
			withdrawals.POST("", withdrawalHandler.Create)
			withdrawals.GET("", withdrawalHandler.ListMine)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, adminMw)
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/users/:username/transactions", adminHandler.GetUserTransactions)
			admin.POST("/codes", codeHandler.Generate)
			admin.GET("/codes", codeHandler.List)
			admin.GET("/withdrawals", withdrawalHandler.AdminList)
			admin.PATCH("/withdrawals/:id/complete", withdrawalHandler.Complete)
			admin.PATCH("/withdrawals/:id/reject", withdrawalHandler.Reject)
		}
	}

	return r
}
