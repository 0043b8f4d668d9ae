package api

import (
	"strings"
	"sync"

	"sunotrack/internal/config"
	"sunotrack/internal/entity"
	"sunotrack/internal/service"
	"sunotrack/internal/storage"
	"sunotrack/internal/store"

	"github.com/gin-gonic/gin"
)

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	store *store.Store

	// storagePublicBase prefixes archived clip keys in task responses so the
	// frontend can play stored media directly.
	storagePublicBase string

	// 服务层
	submissionService *service.SubmissionService
	poller            *service.Poller

	// SSE 客户端管理
	sseClients []chan sseMessage
	sseMu      sync.Mutex
}

// NewHTTPHandler 创建 HTTP 处理器实例
func NewHTTPHandler(cfg config.Config, st *store.Store, _ storage.Storage, poller *service.Poller) *HTTPHandler {
	handler := &HTTPHandler{
		store:             st,
		storagePublicBase: normalisePublicBase(cfg.StoragePublicBaseURL),
		submissionService: service.NewSubmissionService(st),
		poller:            poller,
	}

	// 设置 SSE 通知回调
	st.SetNotifyFunc(handler.notifyStateChanged)
	if poller != nil {
		poller.SetCycleErrorFunc(handler.notifyPollError)
	}

	return handler
}

// normalisePublicBase 规范化公共 URL 基础路径
func normalisePublicBase(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = "/files"
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return strings.TrimRight(trimmed, "/")
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return strings.TrimRight(trimmed, "/")
}

// publicMediaURL maps a stored archive key onto the public base, which is
// either a path prefix served by this process or an external URL.
func (h *HTTPHandler) publicMediaURL(key string) string {
	if key == "" {
		return ""
	}
	return h.storagePublicBase + "/" + strings.TrimLeft(key, "/")
}

// presentTask rewrites archive keys as public URLs. The store's copy keeps
// the raw keys; only the response is decorated.
func (h *HTTPHandler) presentTask(task entity.Task) entity.Task {
	for i := range task.Clips {
		task.Clips[i].AudioPath = h.publicMediaURL(task.Clips[i].AudioPath)
		task.Clips[i].ImagePath = h.publicMediaURL(task.Clips[i].ImagePath)
	}
	return task
}

func (h *HTTPHandler) presentTasks(tasks []entity.Task) []entity.Task {
	for i := range tasks {
		tasks[i] = h.presentTask(tasks[i])
	}
	return tasks
}

// notifyStateChanged 推送状态变化事件（用于 SSE）
func (h *HTTPHandler) notifyStateChanged(event, taskID string) {
	payload := gin.H{}
	if taskID != "" {
		payload["task_id"] = taskID
	}
	h.publishSSEMessage(sseMessage{event: event, data: payload})
}

// notifyPollError 推送轮询周期错误（用于 SSE）
func (h *HTTPHandler) notifyPollError(message string) {
	h.publishSSEMessage(sseMessage{
		event: "poll_error",
		data:  gin.H{"message": message},
	})
}
