package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	_ "github.com/jucampus/registrar-api/api/swagger"
	"github.com/jucampus/registrar-api/internal/handler"
	"github.com/jucampus/registrar-api/internal/idcard"
	"github.com/jucampus/registrar-api/internal/middleware"
	"github.com/jucampus/registrar-api/internal/models"
	"github.com/jucampus/registrar-api/internal/photos"
	"github.com/jucampus/registrar-api/internal/repository"
	"github.com/jucampus/registrar-api/internal/service"
	"github.com/jucampus/registrar-api/internal/sms"
	"github.com/jucampus/registrar-api/pkg/cache"
	"github.com/jucampus/registrar-api/pkg/config"
	"github.com/jucampus/registrar-api/pkg/database"
	"github.com/jucampus/registrar-api/pkg/drive"
	"github.com/jucampus/registrar-api/pkg/export"
	"github.com/jucampus/registrar-api/pkg/jobs"
	"github.com/jucampus/registrar-api/pkg/logger"
	corsmiddleware "github.com/jucampus/registrar-api/pkg/middleware/cors"
	reqidmiddleware "github.com/jucampus/registrar-api/pkg/middleware/requestid"
	"github.com/jucampus/registrar-api/pkg/storage"
)

// @title Registrar API
// @version 1.0.0
// @description Student registration and ID card service
// @BasePath /api
// @schemes http

const collegeName = "Jagannath University"

// Rendered card files are re-generated on demand, so local copies only
// need to outlive the signed download links pointing at them.
const cardRetention = 30 * 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck
	sugar := logr.Sugar()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoDB, closeMongo, err := database.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		sugar.Fatalw("mongo connection failed", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := closeMongo(shutdownCtx); err != nil {
			sugar.Warnw("mongo disconnect failed", "error", err)
		}
	}()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		sugar.Fatalw("redis connection failed", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	studentRepo := repository.NewStudentRepository(mongoDB)
	adminRepo := repository.NewAdminRepository(mongoDB)
	auditRepo := repository.NewAuditRepository(mongoDB)
	otpRepo := repository.NewOTPRepository(redisClient, cfg.OTP.TTL)

	if err := studentRepo.EnsureIndexes(ctx); err != nil {
		sugar.Warnw("student index creation failed", "error", err)
	}
	if err := adminRepo.EnsureIndexes(ctx); err != nil {
		sugar.Warnw("admin index creation failed", "error", err)
	}

	var driveClient drive.Client
	if gd, err := drive.NewGoogleDrive(ctx, cfg.Drive); err != nil {
		sugar.Warnw("drive unavailable, uploads disabled", "error", err)
	} else {
		driveClient = gd
	}

	var photoUploader photos.Uploader
	if cu, err := photos.NewCloudinaryUploader(cfg.Cloudinary); err != nil {
		sugar.Warnw("cloudinary unavailable, photo uploads disabled", "error", err)
	} else {
		photoUploader = cu
	}

	smsSender := sms.NewTwilioSender(cfg.Twilio)

	authSvc := service.NewAuthService(adminRepo, auditRepo, nil, logr, service.AuthConfig{
		Secret:         cfg.JWT.Secret,
		Expiry:         cfg.JWT.Expiration,
		RememberExpiry: cfg.JWT.RememberExpiration,
		Issuer:         "registrar-api",
	})
	if cfg.Bootstrap.AdminEmail != "" {
		if created, err := authSvc.BootstrapSuperAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
			sugar.Warnw("super admin bootstrap failed", "error", err)
		} else if created {
			sugar.Infow("seeded initial super admin", "email", cfg.Bootstrap.AdminEmail)
		}
	}

	metricsSvc := service.NewMetricsService()
	adminSvc := service.NewAdminService(adminRepo, auditRepo, nil, logr)
	registrationSvc := service.NewRegistrationService(studentRepo, export.NewSlipExporter(collegeName), driveClient, cfg.Drive.ParentFolderID, cfg.Uploads, auditRepo, metricsSvc, nil, logr)
	studentSvc := service.NewStudentService(studentRepo, export.NewCSVExporter(), auditRepo, logr)
	photoSvc := service.NewPhotoService(studentRepo, photoUploader, cfg.Uploads, auditRepo, logr)
	otpSvc := service.NewOTPService(otpRepo, smsSender, studentRepo, cfg.OTP.Length, metricsSvc, nil, logr)

	cardSigner := storage.NewSignedURLSigner(cfg.IDCard.SignedURLSecret, cfg.IDCard.SignedURLTTL)
	cardSvc := service.NewCardService(studentRepo, nil, cardSigner, auditRepo, metricsSvc, logr)
	if tmpl, err := idcard.LoadTemplate(cfg.IDCard.TemplatePath); err != nil {
		sugar.Warnw("id card template unavailable, generation disabled", "path", cfg.IDCard.TemplatePath, "error", err)
	} else {
		generator, err := idcard.NewGenerator(
			tmpl,
			idcard.NewPhotoFetcher(cfg.IDCard.PhotoTimeout),
			idcard.NewSofficeConverter(cfg.IDCard.SofficeBinary),
			driveClient,
			cfg.Drive.ParentFolderID,
			cfg.IDCard.OutputDir,
			logr,
		)
		if err != nil {
			sugar.Warnw("id card generator init failed", "error", err)
		} else {
			cardSvc = service.NewCardService(studentRepo, generator, cardSigner, auditRepo, metricsSvc, logr)
		}
	}

	// Card generation also fires when the last verification box is ticked.
	documentSvc := service.NewDocumentService(studentRepo, driveClient, cfg.Drive.ParentFolderID, cfg.Uploads, cardSvc, auditRepo, metricsSvc, logr)

	if store, err := storage.NewLocalStorage(cfg.IDCard.OutputDir); err != nil {
		sugar.Warnw("card output dir unavailable, cleanup disabled", "dir", cfg.IDCard.OutputDir, "error", err)
	} else {
		go func() {
			ticker := time.NewTicker(6 * time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if removed, err := store.CleanupOlderThan(cardRetention); err != nil {
						sugar.Warnw("card cleanup failed", "error", err)
					} else if len(removed) > 0 {
						sugar.Infow("removed stale card files", "count", len(removed))
					}
				}
			}
		}()
	}

	cardQueue := jobs.NewQueue("id_cards", func(jobCtx context.Context, job jobs.Job) error {
		studentID, ok := job.Payload.(string)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", job.Payload)
		}
		_, err := cardSvc.Generate(jobCtx, nil, studentID)
		return err
	}, jobs.QueueConfig{Workers: 2, Logger: logr})
	cardQueue.Start(ctx)
	defer cardQueue.Stop()

	authHandler := handler.NewAuthHandler(authSvc)
	adminHandler := handler.NewAdminHandler(adminSvc, auditRepo)
	registrationHandler := handler.NewRegistrationHandler(registrationSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	documentHandler := handler.NewDocumentHandler(documentSvc)
	photoHandler := handler.NewPhotoHandler(photoSvc)
	otpHandler := handler.NewOTPHandler(otpSvc)
	cardHandler := handler.NewCardHandler(cardSvc, studentSvc, cardQueue)
	healthChecks := map[string]handler.HealthCheck{
		"mongodb": func(pingCtx context.Context) error {
			return mongoDB.Client().Ping(pingCtx, readpref.Primary())
		},
		"redis": func(pingCtx context.Context) error {
			return redisClient.Ping(pingCtx).Err()
		},
		"google_drive": nil,
		"cloudinary":   nil,
		"twilio":       nil,
	}
	if driveClient != nil {
		healthChecks["google_drive"] = func(pingCtx context.Context) error {
			_, err := driveClient.List(pingCtx, cfg.Drive.ParentFolderID)
			return err
		}
	}
	if photoUploader != nil {
		healthChecks["cloudinary"] = func(context.Context) error { return nil }
	}
	if cfg.Twilio.AccountSID != "" {
		healthChecks["twilio"] = func(context.Context) error { return nil }
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, healthChecks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.MaxMultipartMemory = cfg.Uploads.MaxFileSizeBytes

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	students := api.Group("/students")
	{
		students.POST("/register", registrationHandler.Register)
		students.GET("/:student_id/status", registrationHandler.Status)
		students.GET("/:student_id/slip", registrationHandler.Slip)
		students.POST("/:student_id/print-document", registrationHandler.PrintSlip)
		students.POST("/:student_id/documents", documentHandler.Upload)
		students.GET("/:student_id/documents", documentHandler.List)
	}

	api.GET("/health", metricsHandler.Health)
	api.GET("/cards/download", cardHandler.PublicDownload)

	otp := api.Group("/otp")
	{
		otp.POST("/send", otpHandler.Send)
		otp.POST("/verify", otpHandler.Verify)
	}

	admin := api.Group("/admin")
	admin.POST("/login", authHandler.Login)
	admin.POST("/init", authHandler.InitAdmin)

	authed := admin.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.GET("/me", authHandler.Me)
		authed.GET("/verify-token", authHandler.Me)
		authed.POST("/change-password", authHandler.ChangePassword)
		authed.GET("/metrics", metricsHandler.Snapshot)

		staff := authed.Group("", middleware.RBAC(models.RoleDepartmentAdmin, models.RolePhotoAdmin))
		{
			staff.GET("/students", studentHandler.List)
			staff.GET("/students/pending", studentHandler.PendingVerification)
			staff.GET("/students/export", studentHandler.Export)
			staff.GET("/students/:student_id", studentHandler.Get)
			staff.GET("/departments", studentHandler.Departments)
			staff.GET("/departments/stats", studentHandler.DepartmentStats)
			staff.POST("/students/:student_id/photo", photoHandler.Upload)
			staff.GET("/google-drive/test", documentHandler.DriveStatus)
			staff.GET("/google-drive/folders/:student_id", documentHandler.Folder)
		}

		verifiers := authed.Group("", middleware.RBAC(models.RoleDepartmentAdmin))
		{
			verifiers.POST("/students/:student_id/verify", documentHandler.Verify)
			verifiers.POST("/students/:student_id/attendance",
				middleware.Audit(auditRepo, models.AuditActionAttendanceMark, "student"),
				studentHandler.MarkAttendance)
			verifiers.POST("/students/cards/bulk", cardHandler.BulkGenerate)
			verifiers.POST("/students/:student_id/card", cardHandler.Generate)
			verifiers.GET("/students/:student_id/card", cardHandler.Download)
			verifiers.GET("/students/:student_id/card/link", cardHandler.SignedLink)
		}

		superOnly := authed.Group("", middleware.RBAC())
		{
			superOnly.POST("/admins", adminHandler.Create)
			superOnly.GET("/admins", adminHandler.List)
			superOnly.GET("/admins/stats", adminHandler.Stats)
			superOnly.PUT("/admins/:id", adminHandler.Update)
			superOnly.DELETE("/admins/:id", adminHandler.Delete)
			superOnly.GET("/logs", adminHandler.Logs)
		}
	}

	if cfg.Catalog.Enabled {
		catalogDB, err := database.NewPostgres(cfg.Catalog)
		if err != nil {
			sugar.Fatalw("catalog database connection failed", "error", err)
		}
		defer catalogDB.Close() //nolint:errcheck

		catalogSvc := service.NewCatalogService(
			repository.NewProductRepository(catalogDB),
			repository.NewBrandRepository(catalogDB),
			repository.NewCustomerRepository(catalogDB),
			nil, logr)
		catalogHandler := handler.NewCatalogHandler(catalogSvc)

		catalog := api.Group("/catalog")
		{
			catalog.GET("/products", catalogHandler.List)
			catalog.GET("/products/:id", catalogHandler.Get)
			catalog.GET("/brands", catalogHandler.Brands)
		}

		catalogAdmin := admin.Group("/catalog", middleware.JWT(authSvc), middleware.RBAC())
		{
			catalogAdmin.POST("/products", catalogHandler.Create)
			catalogAdmin.PUT("/products/:id", catalogHandler.Update)
			catalogAdmin.DELETE("/products/:id", catalogHandler.Delete)
			catalogAdmin.POST("/brands", catalogHandler.CreateBrand)
			catalogAdmin.DELETE("/brands/:id", catalogHandler.DeleteBrand)
			catalogAdmin.GET("/customers", catalogHandler.Customers)
			catalogAdmin.POST("/customers/:id", catalogHandler.UpdateCustomer)
			catalogAdmin.DELETE("/customers/:id", catalogHandler.DeleteCustomer)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sugar.Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		sugar.Warnw("graceful shutdown failed", "error", err)
	}
}
