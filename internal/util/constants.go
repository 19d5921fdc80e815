package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	SessionCookieName = "token"
	ContextUserKey    = "user"
)

// 文件上传相关常量
const (
	MimePDF = "application/pdf"
)

var (
	AllowedGenerationTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", MimePDF}
	AllowedImageTypes      = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)
