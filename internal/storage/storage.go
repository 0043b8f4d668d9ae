package storage

import (
	"context"
	"fmt"
	"strings"

	"sunotrack/internal/config"
)

const (
	// TypeLocal 表示本地文件系统存储。
	TypeLocal = "local"
	// TypeS3 表示 Amazon S3 或兼容的存储后端。
	TypeS3 = "s3"
	// TypeOSS 表示阿里云 OSS 存储。
	TypeOSS = "oss"
	// TypeCOS 表示腾讯云 COS 存储。
	TypeCOS = "cos"
	// TypeR2 表示 Cloudflare R2 存储。
	TypeR2 = "r2"
)

// Media kinds accepted by SaveOptions.Kind.
const (
	KindAudio = "audio"
	KindCover = "cover"
)

// SaveOptions describes one archived clip asset. Keys are derived from the
// owning task and clip ids, so re-archiving the same clip is idempotent when
// SkipIfExists is set.
type SaveOptions struct {
	TaskID       string
	ClipID       string
	Kind         string
	Extension    string
	ContentType  string
	SkipIfExists bool
}

// Storage persists clip media and returns a storage-specific identifier
// (a relative path for the local backend, an object key for the rest).
type Storage interface {
	Save(ctx context.Context, data []byte, opts SaveOptions) (string, error)
}

// LocalBaseDirProvider 由暴露可通过 HTTP 直接提供服务的本地目录的存储驱动实现。
type LocalBaseDirProvider interface {
	LocalBaseDir() string
}

// NewStorage 根据配置实例化存储后端。An empty archive storage type disables
// archiving; callers get (nil, nil) in that case.
func NewStorage(cfg config.Config) (Storage, error) {
	typeName := strings.ToLower(strings.TrimSpace(cfg.ArchiveStorage))
	switch typeName {
	case "":
		return nil, nil
	case TypeLocal:
		return NewLocalStorage(cfg.StorageLocalDir)
	case TypeS3:
		return NewS3Storage(cfg)
	case TypeOSS:
		return NewOSSStorage(cfg)
	case TypeCOS:
		return NewCOSStorage(cfg)
	case TypeR2:
		return NewR2Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.ArchiveStorage)
	}
}
