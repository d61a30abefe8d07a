package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	Port            int
	MongoURI        string
	MongoDB         string
	JWTKey          string
	Debug           bool
	OutboxSpec      string // 发件箱投递任务的cron表达式
	TaskScanSpec    string // 逾期任务扫描的cron表达式
	OutboxMaxRetry  int    // 发件箱条目最大重试次数
	TransitionRetry int    // 阶段变更CAS冲突最大重试次数
}

// LoadConfig 从环境变量加载配置
func LoadConfig() *Config {
	// 本地开发时从.env文件加载，文件不存在则忽略
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	outboxRetry, _ := strconv.Atoi(getEnv("OUTBOX_MAX_RETRY", "5"))
	transitionRetry, _ := strconv.Atoi(getEnv("TRANSITION_MAX_RETRY", "3"))

	return &Config{
		Port:            port,
		MongoURI:        getEnv("MONGO_URI", "mongodb://127.0.0.1:27017/crm"),
		MongoDB:         getEnv("MONGO_DB", "crm"),
		JWTKey:          getEnv("JWT_KEY", "your-secret-key"), // 实际环境应替换为安全密钥
		Debug:           getEnv("GIN_MODE", "debug") == "debug",
		OutboxSpec:      getEnv("OUTBOX_CRON", "@every 30s"),
		TaskScanSpec:    getEnv("TASK_SCAN_CRON", "0 8 * * *"),
		OutboxMaxRetry:  outboxRetry,
		TransitionRetry: transitionRetry,
	}
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
