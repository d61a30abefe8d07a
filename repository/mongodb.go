package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sailcrm/crm_server/models"
	"github.com/sailcrm/crm_server/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	// 集合名
	UsersCollection          = "users"
	LeadsCollection          = "leads"
	DealsCollection          = "deals"
	PipelineStagesCollection = "pipeline_stages"
	ActivityLogsCollection   = "activity_logs"
	NotificationsCollection  = "notifications"
	TasksCollection          = "tasks"
	AttendanceCollection     = "attendance"
	OutboxCollection         = "outbox"
	OperationLogsCollection  = "api_operation_logs"
)

// MongoStore 基于MongoDB的持久化实现
type MongoStore struct {
	Store
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore 连接MongoDB并构建Store
func NewMongoStore(uri, dbName string) (*MongoStore, error) {
	// 设置连接超时
	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 创建客户端
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("连接MongoDB失败: %w", err)
	}

	// 检查连接
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping MongoDB失败: %w", err)
	}

	db := client.Database(dbName)
	utils.Logger.Info().Str("database", dbName).Msg("已连接到MongoDB")

	s := &MongoStore{client: client, db: db}
	s.Store = Store{
		Deals:         &mongoDealRepo{coll: db.Collection(DealsCollection)},
		Leads:         &mongoLeadRepo{coll: db.Collection(LeadsCollection)},
		Stages:        &mongoStageRepo{coll: db.Collection(PipelineStagesCollection)},
		Activities:    &mongoActivityRepo{coll: db.Collection(ActivityLogsCollection)},
		Notifications: &mongoNotificationRepo{coll: db.Collection(NotificationsCollection)},
		Tasks:         &mongoTaskRepo{coll: db.Collection(TasksCollection)},
		Outbox:        &mongoOutboxRepo{coll: db.Collection(OutboxCollection)},
		Users:         &mongoUserRepo{coll: db.Collection(UsersCollection)},
		Attendance:    &mongoAttendanceRepo{coll: db.Collection(AttendanceCollection)},
		OperationLogs: &mongoOperationLogRepo{coll: db.Collection(OperationLogsCollection)},
	}
	return s, nil
}

// Close 关闭MongoDB连接
func (s *MongoStore) Close() {
	if s.client != nil {
		if err := s.client.Disconnect(context.Background()); err != nil {
			utils.Logger.Error().Err(err).Msg("断开MongoDB连接失败")
			return
		}
		utils.Logger.Info().Msg("已断开MongoDB连接")
	}
}

// ExecuteDbOperation 执行数据库操作，提供错误处理和重试机制
func ExecuteDbOperation(operation func() (interface{}, error), retries int) (interface{}, error) {
	if retries <= 0 {
		retries = 3
	}

	var lastErr error
	for i := 0; i < retries; i++ {
		result, err := operation()
		if err == nil {
			return result, nil
		}

		lastErr = err
		utils.Logger.Error().Err(err).Msgf("数据库操作失败，重试 (%d/%d)", i+1, retries)

		// 如果是不可重试的错误，立即返回
		if !isRetryableError(err) {
			break
		}

		// 延迟后重试
		time.Sleep(time.Duration(500*(i+1)) * time.Millisecond)
	}

	return nil, lastErr
}

// isRetryableError 判断错误是否可重试
func isRetryableError(err error) bool {
	// MongoDB可重试错误代码
	retryableCodes := map[int]bool{
		6:     true, // HostUnreachable
		7:     true, // HostNotFound
		89:    true, // NetworkTimeout
		91:    true, // ShutdownInProgress
		189:   true, // PrimarySteppedDown
		10107: true, // NotMaster
		13436: true, // NotMasterNoSlaveOk
		11600: true, // InterruptedAtShutdown
		11602: true, // InterruptedDueToReplStateChange
		10058: true, // ConnectionReset
	}

	if cmdErr, ok := err.(mongo.CommandError); ok {
		return retryableCodes[int(cmdErr.Code)]
	}

	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}

// InitializeCollections 初始化数据库集合
func (s *MongoStore) InitializeCollections(ctx context.Context) error {
	collections := []string{
		UsersCollection,
		LeadsCollection,
		DealsCollection,
		PipelineStagesCollection,
		ActivityLogsCollection,
		NotificationsCollection,
		TasksCollection,
		AttendanceCollection,
		OutboxCollection,
		OperationLogsCollection,
	}

	existing, err := s.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("列出集合失败: %w", err)
	}
	existingSet := make(map[string]bool, len(existing))
	for _, name := range existing {
		existingSet[name] = true
	}

	for _, collName := range collections {
		if existingSet[collName] {
			continue
		}
		if err := s.db.CreateCollection(ctx, collName); err != nil {
			return fmt.Errorf("创建集合失败: %w", err)
		}
		utils.Logger.Info().Str("collection", collName).Msg("创建集合成功")
	}

	// 线索邮箱唯一索引，配合webhook去重
	_, err = s.db.Collection(LeadsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"email": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		utils.Logger.Error().Err(err).Msg("创建线索邮箱索引失败")
	}

	return nil
}

// InitializePipelineStages 初始化管道阶段配置，已存在则跳过
func (s *MongoStore) InitializePipelineStages(ctx context.Context) error {
	count, err := s.Stages.Count(ctx)
	if err != nil {
		return fmt.Errorf("检查管道阶段配置失败: %w", err)
	}

	if count > 0 {
		utils.Logger.Info().Int64("count", count).Msg("管道阶段配置已存在，跳过初始化")
		return nil
	}

	if err := s.Stages.InsertMany(ctx, models.DefaultPipelineStages); err != nil {
		return fmt.Errorf("写入默认管道阶段失败: %w", err)
	}

	utils.Logger.Info().Int("count", len(models.DefaultPipelineStages)).Msg("已写入默认管道阶段配置")
	return nil
}

// InitializeAdminAccount 初始化管理员账户
func (s *MongoStore) InitializeAdminAccount(ctx context.Context) error {
	count, err := s.Users.CountByRole(ctx, models.UserRoleADMIN)
	if err != nil {
		return fmt.Errorf("检查管理员账户失败: %w", err)
	}

	// 如果已存在，则不创建
	if count > 0 {
		utils.Logger.Info().Msg("管理员账户已存在，跳过创建")
		return nil
	}

	adminUser := &models.User{
		Username:  "admin",
		Password:  utils.HashPassword("admin123"),
		Email:     "admin@example.com",
		Role:      models.UserRoleADMIN,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.Users.Insert(ctx, adminUser); err != nil {
		return fmt.Errorf("创建管理员账户失败: %w", err)
	}

	utils.Logger.Info().Msg("已创建默认管理员账户")
	return nil
}

// GetDatabaseStatus 获取数据库状态
func (s *MongoStore) GetDatabaseStatus(ctx context.Context) (map[string]interface{}, error) {
	collections := []string{
		UsersCollection,
		LeadsCollection,
		DealsCollection,
		PipelineStagesCollection,
		ActivityLogsCollection,
		NotificationsCollection,
		TasksCollection,
		AttendanceCollection,
		OutboxCollection,
		OperationLogsCollection,
	}

	result := make(map[string]interface{})
	for _, collName := range collections {
		count, err := s.db.Collection(collName).CountDocuments(ctx, bson.M{})
		if err != nil {
			utils.Logger.Error().Err(err).Str("collection", collName).Msg("获取集合计数失败")
			result[collName] = map[string]interface{}{"count": 0, "error": err.Error()}
			continue
		}
		result[collName] = map[string]interface{}{"count": count}
	}

	return result, nil
}
