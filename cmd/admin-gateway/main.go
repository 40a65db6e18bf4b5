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

	"github.com/ecclesia-app/admin-gateway/internal/cache"
	"github.com/ecclesia-app/admin-gateway/internal/collection"
	"github.com/ecclesia-app/admin-gateway/internal/handler"
	"github.com/ecclesia-app/admin-gateway/internal/middleware"
	"github.com/ecclesia-app/admin-gateway/internal/service"
	"github.com/ecclesia-app/admin-gateway/internal/upstream"
	"github.com/ecclesia-app/admin-gateway/pkg/config"
	"github.com/ecclesia-app/admin-gateway/pkg/logger"
	corsmiddleware "github.com/ecclesia-app/admin-gateway/pkg/middleware/cors"
	reqidmiddleware "github.com/ecclesia-app/admin-gateway/pkg/middleware/requestid"
)

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	// Snapshot cache: redis when configured, in-process otherwise.
	var store cache.Store = cache.NewMemoryStore()
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("redis connection failed", "error", err)
		}
		defer redisClient.Close() //nolint:errcheck
		store = cache.NewRedisStore(redisClient)
	}
	snapshots := cache.New(store, cfg.Cache.TTL, cfg.Cache.Enabled, logr)
	snapshots.OnLookup = metrics.RecordCacheOperation

	// Upstream client carrying the service token on every call.
	var tokens upstream.TokenSource = upstream.StaticTokenSource(cfg.Upstream.Token)
	if cfg.Upstream.TokenFile != "" {
		tokens = upstream.NewFileTokenSource(cfg.Upstream.TokenFile)
	}
	client := upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, tokens, logr)
	client.OnRequest = metrics.ObserveUpstreamRequest

	// Services.
	groupService := service.NewGroupService(client.Groups(), client.Members(), snapshots, cfg.Lists, logr)
	memberService := service.NewMemberService(client.Members(), snapshots, cfg.Lists, cfg.Upstream.AssetHost, logr)
	mentorshipService := service.NewMentorshipService(client.Mentorships(), client.Members(), snapshots, cfg.Lists, logr)
	marriageService := service.NewMarriageService(client.Marriages(), client.Members(), snapshots, cfg.Lists, cfg.Sessions, logr)
	appointmentService := service.NewAppointmentService(client.Appointments(), snapshots, cfg.Lists, logr)
	sundayClassService := service.NewSundayClassService(client.SundayClasses(), snapshots, cfg.Lists, logr)
	deathService := service.NewDeathService(client.Deaths(), client.Members(), snapshots, cfg.Lists, logr)
	churchService := service.NewChurchService(client.Churches(), snapshots, cfg.Lists, logr)
	missionService := service.NewMissionService(client.Missions(), snapshots, cfg.Lists, logr)
	exportService := service.NewExportService(cfg.Exports, logr)
	exportService.OnExport = metrics.RecordExport

	// Refetch worker: every invalidated snapshot is re-primed off the write
	// path so the next list render hits a warm cache.
	refetch := service.NewRefetchService(cfg.Refetch, logr)
	register := func(resource string, load func(ctx context.Context, id int64) error) {
		refetch.Register(resource, func(ctx context.Context, key string) error {
			_, _, id, err := cache.ParseKey(key)
			if err != nil {
				return err
			}
			return load(ctx, id)
		})
	}
	register("groups", func(ctx context.Context, id int64) error {
		_, err := groupService.List(ctx, id, collection.Query{}, true)
		return err
	})
	register("members", func(ctx context.Context, id int64) error {
		_, err := memberService.List(ctx, id, collection.Query{}, true)
		return err
	})
	register("mentorships", func(ctx context.Context, id int64) error {
		_, err := mentorshipService.List(ctx, id, collection.Query{}, true)
		return err
	})
	register("marriages", func(ctx context.Context, id int64) error {
		_, err := marriageService.List(ctx, id, collection.Query{}, true)
		return err
	})
	register("appointments", func(ctx context.Context, id int64) error {
		_, err := appointmentService.List(ctx, id, collection.Query{}, true)
		return err
	})
	register("sunday-classes", func(ctx context.Context, id int64) error {
		_, err := sundayClassService.List(ctx, id, collection.Query{}, true)
		return err
	})
	register("deaths", func(ctx context.Context, id int64) error {
		_, err := deathService.List(ctx, id, collection.Query{}, true)
		return err
	})
	register("churches", func(ctx context.Context, id int64) error {
		_, err := churchService.List(ctx, id, collection.Query{}, true)
		return err
	})
	register("missions", func(ctx context.Context, _ int64) error {
		_, err := missionService.List(ctx, collection.Query{}, true)
		return err
	})
	snapshots.Subscribe(func(string, []string) {
		metrics.RecordRefetch()
	})
	snapshots.Subscribe(refetch.Subscriber())
	refetch.Start(ctx)
	defer refetch.Stop()

	// Handlers.
	systemHandler := handler.NewSystemHandler()
	groupHandler := handler.NewGroupHandler(groupService)
	memberHandler := handler.NewMemberHandler(memberService)
	mentorshipHandler := handler.NewMentorshipHandler(mentorshipService)
	marriageHandler := handler.NewMarriageHandler(marriageService)
	appointmentHandler := handler.NewAppointmentHandler(appointmentService)
	sundayClassHandler := handler.NewSundayClassHandler(sundayClassService)
	deathHandler := handler.NewDeathHandler(deathService)
	churchHandler := handler.NewChurchHandler(churchService)
	missionHandler := handler.NewMissionHandler(missionService)
	exportHandler := handler.NewExportHandler(exportService, groupService, memberService,
		mentorshipService, marriageService, appointmentService, sundayClassService,
		deathService, churchService, missionService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", systemHandler.Health)
	r.GET("/ready", systemHandler.Ready)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	verifier := middleware.NewTokenVerifier(cfg.JWT.Secret)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Auth(verifier))
	api.Use(middleware.Audit(logr))
	{
		api.GET("/me", systemHandler.Me)

		api.GET("/missions", missionHandler.List)
		api.GET("/missions/:id", missionHandler.Get)
		api.GET("/churches", churchHandler.List)
		api.GET("/churches/:id", churchHandler.Get)

		// Mission and church management is reserved for platform admins.
		admin := api.Group("", middleware.RequireRoles("admin"))
		admin.POST("/missions", missionHandler.Create)
		admin.PUT("/missions/:id", missionHandler.Update)
		admin.DELETE("/missions/:id", missionHandler.Delete)
		admin.POST("/churches", churchHandler.Create)
		admin.PUT("/churches/:id", churchHandler.Update)
		admin.DELETE("/churches/:id", churchHandler.Delete)

		api.GET("/members", memberHandler.List)
		api.GET("/members/:id", memberHandler.Get)
		api.POST("/members", memberHandler.Create)
		api.PUT("/members/:id", memberHandler.Update)
		api.DELETE("/members/:id", memberHandler.Delete)

		api.GET("/groups", groupHandler.List)
		api.GET("/groups/:id", groupHandler.Get)
		api.GET("/groups/:id/members", memberHandler.ListByGroup)
		api.POST("/groups", groupHandler.Create)
		api.PUT("/groups/:id", groupHandler.Update)
		api.DELETE("/groups/:id", groupHandler.Delete)
		api.POST("/groups/:id/members", groupHandler.AddMember)
		api.DELETE("/groups/:id/members/:memberId", groupHandler.RemoveMember)
		api.POST("/groups/:id/transfer", groupHandler.Transfer)

		api.GET("/mentorships", mentorshipHandler.List)
		api.POST("/mentorships", mentorshipHandler.Pair)
		api.DELETE("/mentorships/:id", mentorshipHandler.Unpair)

		api.GET("/marriages", marriageHandler.List)
		api.GET("/marriages/:id", marriageHandler.Get)
		api.PUT("/marriages/:id", marriageHandler.Update)
		api.DELETE("/marriages/:id", marriageHandler.Delete)
		api.POST("/marriages/wizard", marriageHandler.StartWizard)
		api.POST("/marriages/wizard/:wizardId/fields", marriageHandler.SetWizardFields)
		api.POST("/marriages/wizard/:wizardId/next", marriageHandler.AdvanceWizard)
		api.POST("/marriages/wizard/:wizardId/back", marriageHandler.BackWizard)
		api.POST("/marriages/wizard/:wizardId/submit", marriageHandler.SubmitWizard)
		api.POST("/marriages/wizard/:wizardId/cancel", marriageHandler.CancelWizard)

		api.GET("/appointments", appointmentHandler.List)
		api.GET("/appointments/:id", appointmentHandler.Get)
		api.POST("/appointments", appointmentHandler.Create)
		api.PUT("/appointments/:id", appointmentHandler.Update)
		api.DELETE("/appointments/:id", appointmentHandler.Delete)

		api.GET("/sunday-classes", sundayClassHandler.List)
		api.GET("/sunday-classes/:id", sundayClassHandler.Get)
		api.POST("/sunday-classes", sundayClassHandler.Create)
		api.PUT("/sunday-classes/:id", sundayClassHandler.Update)
		api.DELETE("/sunday-classes/:id", sundayClassHandler.Delete)

		api.GET("/deaths", deathHandler.List)
		api.GET("/deaths/:id", deathHandler.Get)
		api.POST("/deaths", deathHandler.Create)
		api.PUT("/deaths/:id", deathHandler.Update)
		api.DELETE("/deaths/:id", deathHandler.Delete)

		api.GET("/exports/:resource", exportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
