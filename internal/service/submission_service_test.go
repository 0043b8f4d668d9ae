package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sunotrack/internal/entity"
	"sunotrack/internal/store"
	"sunotrack/internal/suno"
)

// fakeProvider is a scripted ProviderClient for service tests. The poller
// fetches tasks concurrently, so call recording is guarded.
type fakeProvider struct {
	mu        sync.Mutex
	submitID  string
	submitErr error
	submitted []suno.SubmitRequest

	fetchData map[string]*suno.FetchData
	fetchErr  error
	fetched   []string
}

func (f *fakeProvider) Submit(ctx context.Context, req suno.SubmitRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, req)
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return f.submitID, nil
}

func (f *fakeProvider) Fetch(ctx context.Context, taskID string) (*suno.FetchData, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, taskID)
	f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if data, ok := f.fetchData[taskID]; ok {
		return data, nil
	}
	return &suno.FetchData{}, nil
}

func (f *fakeProvider) submitCalls() []suno.SubmitRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]suno.SubmitRequest(nil), f.submitted...)
}

func (f *fakeProvider) fetchCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetched...)
}

func newConfiguredStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New(nil)
	err := st.Load(context.Background(), store.Seed{
		BaseURL: "https://api.example.com",
		APIKey:  "sk-test",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return st
}

func newTestSubmissionService(st *store.Store, provider *fakeProvider) *SubmissionService {
	svc := NewSubmissionService(st)
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }
	svc.newClient = func(baseURL, apiKey string) ProviderClient { return provider }
	return svc
}

func TestSubmitCreative(t *testing.T) {
	st := newConfiguredStore(t)
	provider := &fakeProvider{submitID: "task-abc"}
	svc := newTestSubmissionService(st, provider)

	task, err := svc.Submit(context.Background(), SubmitInput{
		Mode:                 ModeCreative,
		GptDescriptionPrompt: "an epic trailer score",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if task.ID != "task-abc" || task.Status != entity.StatusQueued {
		t.Errorf("unexpected task: %+v", task)
	}
	if task.SubmitTime != 1700000000 {
		t.Errorf("submit time = %d", task.SubmitTime)
	}
	if task.Progress != "0%" || !task.IsExpanded {
		t.Errorf("unexpected task defaults: %+v", task)
	}
	if task.Mv != DefaultModelVersion {
		t.Errorf("mv = %q, want default %q", task.Mv, DefaultModelVersion)
	}

	calls := provider.submitCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 submit call, got %d", len(calls))
	}
	req := calls[0]
	if req.GptDescriptionPrompt != "an epic trailer score" || req.Prompt != "" {
		t.Errorf("unexpected request: %+v", req)
	}

	tasks := st.Tasks()
	if len(tasks) != 1 || tasks[0].ID != "task-abc" {
		t.Errorf("task not registered: %+v", tasks)
	}
	history := st.CreativeHistory()
	if len(history) != 1 || history[0] != "an epic trailer score" {
		t.Errorf("creative history not recorded: %v", history)
	}
}

func TestSubmitCustom(t *testing.T) {
	st := newConfiguredStore(t)
	provider := &fakeProvider{submitID: "task-xyz"}
	svc := newTestSubmissionService(st, provider)

	task, err := svc.Submit(context.Background(), SubmitInput{
		Mode:   ModeCustom,
		Prompt: "verse one\nchorus",
		Tags:   "synthwave, retro",
		Title:  "Sunset Drive",
		Mv:     "chirp-v3-5",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if task.Prompt != "verse one\nchorus" || task.Tags != "synthwave, retro" || task.Title != "Sunset Drive" {
		t.Errorf("custom fields not carried: %+v", task)
	}
	if task.Mv != "chirp-v3-5" {
		t.Errorf("explicit model overridden: %q", task.Mv)
	}

	req := provider.submitted[0]
	if req.GptDescriptionPrompt != "" || req.Prompt == "" {
		t.Errorf("creative fields leaked into custom request: %+v", req)
	}

	history := st.CustomHistory()
	if len(history) != 1 || history[0].Title != "Sunset Drive" {
		t.Errorf("custom history not recorded: %+v", history)
	}
}

func TestSubmitCustomInstrumentalWithoutLyrics(t *testing.T) {
	st := newConfiguredStore(t)
	provider := &fakeProvider{submitID: "task-inst"}
	svc := newTestSubmissionService(st, provider)

	_, err := svc.Submit(context.Background(), SubmitInput{
		Mode:             ModeCustom,
		Tags:             "lofi",
		MakeInstrumental: true,
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !provider.submitted[0].MakeInstrumental {
		t.Error("instrumental flag not forwarded")
	}
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name      string
		input     SubmitInput
		wantField string
	}{
		{
			name:      "unknown mode",
			input:     SubmitInput{Mode: "freestyle"},
			wantField: "mode",
		},
		{
			name:      "creative without prompt",
			input:     SubmitInput{Mode: ModeCreative},
			wantField: "gpt_description_prompt",
		},
		{
			name:      "custom without tags",
			input:     SubmitInput{Mode: ModeCustom, Prompt: "lyrics"},
			wantField: "tags",
		},
		{
			name:      "custom without lyrics or instrumental",
			input:     SubmitInput{Mode: ModeCustom, Tags: "pop"},
			wantField: "prompt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newConfiguredStore(t)
			provider := &fakeProvider{submitID: "task-1"}
			svc := newTestSubmissionService(st, provider)

			_, err := svc.Submit(context.Background(), tt.input)
			var validation *ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if validation.Field != tt.wantField {
				t.Errorf("field = %q, want %q", validation.Field, tt.wantField)
			}
			if len(provider.submitted) != 0 {
				t.Error("validation failure reached the provider")
			}
			if len(st.Tasks()) != 0 {
				t.Error("validation failure registered a task")
			}
		})
	}
}

func TestSubmitNotConfigured(t *testing.T) {
	st := store.New(nil)
	if err := st.Load(context.Background(), store.Seed{}); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	provider := &fakeProvider{submitID: "task-1"}
	svc := newTestSubmissionService(st, provider)

	_, err := svc.Submit(context.Background(), SubmitInput{Mode: ModeCreative, GptDescriptionPrompt: "x"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("error = %v, want ErrNotConfigured", err)
	}
	if len(provider.submitted) != 0 {
		t.Error("unconfigured submission reached the provider")
	}
}

func TestSubmitProviderFailure(t *testing.T) {
	st := newConfiguredStore(t)
	provider := &fakeProvider{submitErr: &suno.APIError{StatusCode: 402, Code: "error", Message: "insufficient quota"}}
	svc := newTestSubmissionService(st, provider)

	_, err := svc.Submit(context.Background(), SubmitInput{Mode: ModeCreative, GptDescriptionPrompt: "x"})
	var apiErr *suno.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *suno.APIError", err)
	}
	if len(st.Tasks()) != 0 {
		t.Error("failed submission registered a task")
	}
	if len(st.CreativeHistory()) != 0 {
		t.Error("failed submission recorded history")
	}
}
