package storage

import (
	"strings"
	"testing"
)

func TestBuildObjectKey(t *testing.T) {
	tests := []struct {
		name string
		opts SaveOptions
		want string
	}{
		{
			name: "audio clip",
			opts: SaveOptions{TaskID: "task-1", ClipID: "clip-1", Kind: KindAudio, Extension: "mp3"},
			want: "audio/task-1/clip-1.mp3",
		},
		{
			name: "cover image",
			opts: SaveOptions{TaskID: "task-1", ClipID: "clip-1", Kind: KindCover, Extension: ".jpeg"},
			want: "cover/task-1/clip-1.jpeg",
		},
		{
			name: "ids are sanitised",
			opts: SaveOptions{TaskID: "Task/../1", ClipID: "CLIP 2", Kind: KindAudio, Extension: "mp3"},
			want: "audio/task1/clip2.mp3",
		},
		{
			name: "missing kind defaults to audio",
			opts: SaveOptions{TaskID: "task-1", ClipID: "clip-1", Extension: "mp3"},
			want: "audio/task-1/clip-1.mp3",
		},
		{
			name: "missing extension defaults to bin",
			opts: SaveOptions{TaskID: "task-1", ClipID: "clip-1", Kind: KindAudio},
			want: "audio/task-1/clip-1.bin",
		},
		{
			name: "missing task id",
			opts: SaveOptions{ClipID: "clip-1", Kind: KindAudio, Extension: "mp3"},
			want: "audio/unknown-task/clip-1.mp3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildObjectKey(tt.opts); got != tt.want {
				t.Errorf("buildObjectKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildObjectKeyBlankClipID(t *testing.T) {
	key := buildObjectKey(SaveOptions{TaskID: "task-1", Kind: KindAudio, Extension: "mp3"})
	if !strings.HasPrefix(key, "audio/task-1/") || !strings.HasSuffix(key, ".mp3") {
		t.Errorf("unexpected key for blank clip id: %q", key)
	}
	if strings.Contains(key, "..") || strings.Contains(key, " ") {
		t.Errorf("unsafe key: %q", key)
	}
}

func TestSanitizePathSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc-123", "abc-123"},
		{"ABC", "abc"},
		{"  spaced  ", "spaced"},
		{"../../etc/passwd", "etcpasswd"},
		{"snake_case", "snake_case"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := sanitizePathSegment(tt.in); got != tt.want {
			t.Errorf("sanitizePathSegment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContentTypeFor(t *testing.T) {
	if got := contentTypeFor(SaveOptions{ContentType: "audio/mpeg"}); got != "audio/mpeg" {
		t.Errorf("explicit content type ignored: %q", got)
	}
	if got := contentTypeFor(SaveOptions{Extension: "unknownext"}); got != "application/octet-stream" {
		t.Errorf("fallback = %q", got)
	}
}

func TestJoinPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		key    string
		want   string
	}{
		{"", "audio/t/c.mp3", "audio/t/c.mp3"},
		{"archive", "audio/t/c.mp3", "archive/audio/t/c.mp3"},
		{"/archive/", "/audio/t/c.mp3", "archive/audio/t/c.mp3"},
		{"  deep/nested  ", "x.bin", "deep/nested/x.bin"},
	}

	for _, tt := range tests {
		if got := joinPrefix(tt.prefix, tt.key); got != tt.want {
			t.Errorf("joinPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
		}
	}
}
