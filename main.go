package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sailcrm/crm_server/config"
	"github.com/sailcrm/crm_server/controllers"
	"github.com/sailcrm/crm_server/middleware"
	"github.com/sailcrm/crm_server/repository"
	"github.com/sailcrm/crm_server/routes"
	"github.com/sailcrm/crm_server/service"
	"github.com/sailcrm/crm_server/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	// 初始化日志
	utils.InitLogger()

	// 加载配置
	cfg := config.LoadConfig()

	// 设置Gin模式
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化数据库
	mongoStore, err := repository.NewMongoStore(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		utils.Logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer mongoStore.Close()

	store := &mongoStore.Store

	// 构建服务层
	dispatcher := service.NewDispatcher(store)
	pipeline := service.NewPipelineService(store, dispatcher, cfg.TransitionRetry)
	analytics := service.NewAnalyticsService(store)

	// 创建Gin实例
	router := gin.New()

	// 应用中间件
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.OperationLogger(store))

	// 注册路由
	ctl := &routes.Controllers{
		Auth:         controllers.NewAuthController(store),
		Deal:         controllers.NewDealController(store, pipeline),
		Pipeline:     controllers.NewPipelineController(store, pipeline, analytics),
		Lead:         controllers.NewLeadController(store, dispatcher),
		Webhook:      controllers.NewWebhookController(store, dispatcher),
		Task:         controllers.NewTaskController(store, dispatcher),
		Notification: controllers.NewNotificationController(store),
		ActivityLog:  controllers.NewActivityLogController(store),
		Attendance:   controllers.NewAttendanceController(store),
	}
	routes.RegisterRoutes(router, ctl, mongoStore.GetDatabaseStatus)

	// 初始化系统数据
	utils.Logger.Info().Msg("开始系统初始化...")
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := mongoStore.InitializeCollections(initCtx); err != nil {
		utils.Logger.Error().Err(err).Msg("初始化数据库集合失败")
	}
	if err := mongoStore.InitializePipelineStages(initCtx); err != nil {
		utils.Logger.Error().Err(err).Msg("初始化管道阶段配置失败")
	}
	if err := mongoStore.InitializeAdminAccount(initCtx); err != nil {
		utils.Logger.Error().Err(err).Msg("初始化管理员账户失败")
	}
	initCancel()
	utils.Logger.Info().Msg("系统初始化完成")

	// 启动后台定时任务
	workers, err := service.StartWorkers(cfg, store, dispatcher)
	if err != nil {
		utils.Logger.Fatal().Err(err).Msg("启动后台定时任务失败")
	}

	// 设置HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 启动服务器
	go func() {
		utils.Logger.Info().Msgf("服务器启动，监听端口: %d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Logger.Fatal().Err(err).Msg("启动服务器失败")
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.Logger.Info().Msg("正在关闭服务器...")

	// 先停定时任务，等正在执行的跑完
	<-workers.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.Logger.Fatal().Err(err).Msg("服务器关闭异常")
	}

	utils.Logger.Info().Msg("服务器已优雅关闭")
}
