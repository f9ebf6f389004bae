package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	ContextUserKey   = "user"
	ContextLoggerKey = "logger"
	HeaderRequestID  = "X-Request-ID"
)
