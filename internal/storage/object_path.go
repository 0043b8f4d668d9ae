package storage

import (
	"fmt"
	"mime"
	"path"
	"strings"
	"time"
)

func sanitizePathSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	builder := strings.Builder{}
	builder.Grow(len(value))
	for i := 0; i < len(value); i++ {
		ch := value[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
			builder.WriteByte(ch)
		case ch >= 'A' && ch <= 'Z':
			builder.WriteByte(ch + 32)
		case ch == '-', ch == '_':
			builder.WriteByte(ch)
		}
	}
	return builder.String()
}

func normalizeExtension(ext string) string {
	trimmed := strings.TrimSpace(ext)
	trimmed = strings.TrimPrefix(trimmed, ".")
	if trimmed == "" {
		return "bin"
	}
	return sanitizePathSegment(trimmed)
}

// buildObjectKey lays archived assets out as kind/task-id/clip-id.ext so a
// task's clips sit next to each other in the bucket or directory tree.
func buildObjectKey(opts SaveOptions) string {
	kind := sanitizePathSegment(opts.Kind)
	if kind == "" {
		kind = KindAudio
	}
	taskID := sanitizePathSegment(opts.TaskID)
	if taskID == "" {
		taskID = "unknown-task"
	}
	clipID := sanitizePathSegment(opts.ClipID)
	if clipID == "" {
		clipID = fmt.Sprintf("%d", time.Now().UTC().UnixNano())
	}
	filename := fmt.Sprintf("%s.%s", clipID, normalizeExtension(opts.Extension))
	return path.Join(kind, taskID, filename)
}

// contentTypeFor prefers the explicit content type and falls back to the
// extension's registered MIME type.
func contentTypeFor(opts SaveOptions) string {
	if ct := strings.TrimSpace(opts.ContentType); ct != "" {
		return ct
	}
	typeName := mime.TypeByExtension("." + normalizeExtension(opts.Extension))
	if typeName == "" {
		return "application/octet-stream"
	}
	return typeName
}

func joinPrefix(prefix, key string) string {
	cleanPrefix := trimPrefix(prefix)
	if cleanPrefix == "" {
		return strings.TrimLeft(key, "/")
	}
	return path.Join(cleanPrefix, strings.TrimLeft(key, "/"))
}

func trimPrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}
