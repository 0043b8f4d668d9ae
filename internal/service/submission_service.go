package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sunotrack/internal/entity"
	"sunotrack/internal/store"
	"sunotrack/internal/suno"

	"github.com/sirupsen/logrus"
)

// Submission modes.
const (
	ModeCreative = "creative"
	ModeCustom   = "custom"
)

// DefaultModelVersion is used when the request does not pick a model.
const DefaultModelVersion = "chirp-auk"

// ErrNotConfigured blocks any provider call while base URL or API key are
// missing from the settings.
var ErrNotConfigured = errors.New("provider base URL and API key must be configured")

// ValidationError reports a missing or invalid input field. It never reaches
// the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SubmitInput is one generation request from the user.
type SubmitInput struct {
	Mode                 string `json:"mode"`
	GptDescriptionPrompt string `json:"gpt_description_prompt"`
	Prompt               string `json:"prompt"`
	Tags                 string `json:"tags"`
	Title                string `json:"title"`
	Mv                   string `json:"mv"`
	MakeInstrumental     bool   `json:"make_instrumental"`
}

// SubmissionService 提交服务：校验请求、调用供应商、登记任务
type SubmissionService struct {
	store *store.Store

	now       func() time.Time
	newClient func(baseURL, apiKey string) ProviderClient
}

// ProviderClient is the slice of the suno client the services depend on.
type ProviderClient interface {
	Submit(ctx context.Context, req suno.SubmitRequest) (string, error)
	Fetch(ctx context.Context, taskID string) (*suno.FetchData, error)
}

// NewSubmissionService 创建提交服务实例
func NewSubmissionService(st *store.Store) *SubmissionService {
	return &SubmissionService{
		store: st,
		now:   time.Now,
		newClient: func(baseURL, apiKey string) ProviderClient {
			return suno.NewClient(baseURL, apiKey)
		},
	}
}

// Submit validates the request, calls the provider's submit endpoint and
// registers the resulting task. Validation failures and missing settings
// never reach the network; on provider failure no task is created.
func (s *SubmissionService) Submit(ctx context.Context, input SubmitInput) (*entity.Task, error) {
	if input.Mv == "" {
		input.Mv = DefaultModelVersion
	}

	switch input.Mode {
	case ModeCreative:
		if input.GptDescriptionPrompt == "" {
			return nil, &ValidationError{Field: "gpt_description_prompt", Message: "prompt is required for creative mode"}
		}
	case ModeCustom:
		if input.Tags == "" {
			return nil, &ValidationError{Field: "tags", Message: "tags are required for custom mode"}
		}
		if input.Prompt == "" && !input.MakeInstrumental {
			return nil, &ValidationError{Field: "prompt", Message: "lyrics are required for custom mode unless instrumental"}
		}
	default:
		return nil, &ValidationError{Field: "mode", Message: "mode must be creative or custom"}
	}

	settings := s.store.Settings()
	if !settings.Configured() {
		return nil, ErrNotConfigured
	}

	req := suno.SubmitRequest{
		Mv:               input.Mv,
		MakeInstrumental: input.MakeInstrumental,
	}
	if input.Mode == ModeCreative {
		req.GptDescriptionPrompt = input.GptDescriptionPrompt
	} else {
		req.Prompt = input.Prompt
		req.Tags = input.Tags
		req.Title = input.Title
	}

	client := s.newClient(settings.BaseURL, settings.APIKey)
	taskID, err := client.Submit(ctx, req)
	if err != nil {
		logrus.WithError(err).WithField("mode", input.Mode).Error("failed to submit generation task")
		return nil, err
	}

	task := entity.Task{
		ID:                   taskID,
		Status:               entity.StatusQueued,
		Clips:                entity.ClipList{},
		SubmitTime:           s.now().Unix(),
		Progress:             "0%",
		GptDescriptionPrompt: req.GptDescriptionPrompt,
		Prompt:               req.Prompt,
		Tags:                 req.Tags,
		Title:                req.Title,
		MakeInstrumental:     input.MakeInstrumental,
		Mv:                   input.Mv,
		IsExpanded:           true,
	}
	if err := s.store.AddTask(ctx, task); err != nil {
		return nil, fmt.Errorf("register task %s: %w", taskID, err)
	}

	if err := s.recordHistory(ctx, input); err != nil {
		// The task is already registered; a history write failure only costs
		// the recall entry.
		logrus.WithError(err).Warn("failed to record prompt history")
	}

	logrus.WithFields(logrus.Fields{
		"task_id": taskID,
		"mode":    input.Mode,
		"mv":      input.Mv,
	}).Info("generation task submitted")

	registered, _ := s.store.Task(taskID)
	return &registered, nil
}

func (s *SubmissionService) recordHistory(ctx context.Context, input SubmitInput) error {
	if input.Mode == ModeCreative {
		return s.store.AddCreativeHistoryItem(ctx, input.GptDescriptionPrompt)
	}
	return s.store.AddCustomHistoryItem(ctx, entity.CustomHistoryItem{
		Prompt: input.Prompt,
		Tags:   input.Tags,
		Title:  input.Title,
	})
}
