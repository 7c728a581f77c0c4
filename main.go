package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"SProject/data/database/pg"
	"SProject/global"
	"SProject/logger"
	"SProject/middleware"
	"SProject/module/dm"
	dmservice "SProject/module/dm/service"
	dmstore "SProject/module/dm/store"
	"SProject/module/feed"
	feedservice "SProject/module/feed/service"
	feedstore "SProject/module/feed/store"
	"SProject/module/group"
	groupservice "SProject/module/group/service"
	groupstore "SProject/module/group/store"
	"SProject/module/profile"
	profileservice "SProject/module/profile/service"
	profilestore "SProject/module/profile/store"
	"SProject/module/readstate"
	readservice "SProject/module/readstate/service"
	readstore "SProject/module/readstate/store"
	"SProject/module/relation"
	relationservice "SProject/module/relation/service"
	relationstore "SProject/module/relation/store"
	"SProject/service/realtime"
	"SProject/service/storage"
	redisstore "SProject/service/storage/redis"
	"SProject/tools/ids"
	"SProject/tools/safe"
)

func main() {
	confPath := flag.String("conf", "", "config.yaml 所在目录")
	flag.Parse()

	if err := global.LoadConfig(*confPath); err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	logger.Init(global.Conf.Server.LogLevel, global.Conf.Server.Development)
	ids.SetNodeID(global.Conf.Server.NodeID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pg.InitPg(ctx, pg.Config{
		DSN:      global.Conf.Postgres.DSN,
		MaxConns: global.Conf.Postgres.MaxConns,
	}); err != nil {
		logger.Error("postgres init failed", zap.Error(err))
		os.Exit(1)
	}
	defer pg.ClosePg()
	pool := pg.GetPool()

	if global.Conf.Postgres.AutoMigrate {
		if err := pg.Migrate(ctx, pool); err != nil {
			logger.Error("migrate failed", zap.Error(err))
			os.Exit(1)
		}
	}

	if err := redisstore.InitRedis(global.Conf.Redis); err != nil {
		logger.Error("redis init failed", zap.Error(err))
		os.Exit(1)
	}
	defer redisstore.CloseRedis()

	publisher, err := realtime.NewPublisher(global.Conf.Nats)
	if err != nil {
		// 投递通道是尽力而为的,连不上只降级不拦启动
		logger.Warn("nats unavailable, realtime publish disabled", zap.Error(err))
	}
	if publisher != nil {
		defer publisher.Close()
	}

	// store → service → handler,权限谓词全部收在 service 层
	profiles := profilestore.NewProfileStore(pool)
	relations := relationstore.NewRelationStore(pool)
	dms := dmstore.NewDMStore(pool)
	groups := groupstore.NewGroupStore(pool)
	feeds := feedstore.NewFeedStore(pool)
	reads := readstore.NewReadStateStore(pool)

	resolver := profileservice.NewResolver(profiles)
	relationSvc := relationservice.NewRelationService(relations)
	dmSvc := dmservice.NewDMService(dms, relationSvc, publisher)
	groupSvc := groupservice.NewGroupService(groups, publisher)
	feedSvc := feedservice.NewFeedService(feeds)
	readSvc := readservice.NewReadStateService(reads, dms, groups)

	sessions := storage.NewSessionStore()
	resolver.AttachSessions(sessions)

	gin.SetMode(global.Conf.Server.Mode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	mgr := middleware.Manager()
	mgr.Add(middleware.AccessLog())
	mgr.Add(middleware.Origin())
	engine.Use(mgr.Handlers()...)

	api := engine.Group("/api/v1")
	profile.NewHandler(resolver, sessions).Register(api)
	relation.NewHandler(relationSvc, resolver).Register(api)
	dm.NewHandler(dmSvc, resolver).Register(api)
	group.NewHandler(groupSvc, resolver).Register(api)
	feed.NewHandler(feedSvc, resolver).Register(api)
	readstate.NewHandler(readSvc, resolver).Register(api)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", global.Conf.Server.Port),
		Handler: engine,
	}

	safe.Go("http-server", func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", zap.Error(err))
			cancel()
		}
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}
