package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 文档存储驱动
const (
	StoreMemory   = "memory"
	StoreMongo    = "mongo"
	StoreMySQL    = "mysql"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// ContextUserKey is the gin context key holding the verified *Claims.
const ContextUserKey = "user"

const MimeJSON = "application/json"
