package usecase_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/metgate/pkg/domain/model"
	"github.com/m-mizutani/metgate/pkg/usecase"
)

// mockGateUC records dispatched gate runs on a channel
type mockGateUC struct {
	runs chan *model.GateInput
}

func newMockGateUC() *mockGateUC {
	return &mockGateUC{runs: make(chan *model.GateInput, 1)}
}

func (m *mockGateUC) Run(ctx context.Context, input *model.GateInput) (*model.GateResult, error) {
	m.runs <- input
	return &model.GateResult{Decision: model.DecisionSkipped}, nil
}

func (m *mockGateUC) waitForRun(t *testing.T) *model.GateInput {
	t.Helper()
	select {
	case input := <-m.runs:
		return input
	case <-time.After(2 * time.Second):
		t.Fatal("gate run was not dispatched")
		return nil
	}
}

func (m *mockGateUC) assertNoRun(t *testing.T) {
	t.Helper()
	select {
	case <-m.runs:
		t.Fatal("gate run dispatched unexpectedly")
	case <-time.After(50 * time.Millisecond):
	}
}

func watchConfig() *model.WatchConfig {
	return &model.WatchConfig{
		Targets: []model.WatchTarget{
			{
				Owner:    "example",
				Repo:     "ha-metoffice-datahub",
				Branch:   "main",
				Manifest: "custom_components/metoffice_datahub/manifest.json",
			},
		},
	}
}

func pushPayload(t *testing.T, fullName, ref string, modified []string) []byte {
	t.Helper()
	payload := map[string]any{
		"ref":   ref,
		"after": "after789",
		"repository": map[string]any{
			"full_name": fullName,
		},
		"head_commit": map[string]any{
			"id":       "head123",
			"modified": modified,
		},
		"commits": []map[string]any{
			{
				"id":       "head123",
				"added":    []string{},
				"removed":  []string{},
				"modified": modified,
			},
		},
	}
	data, err := json.Marshal(payload)
	gt.NoError(t, err)
	return data
}

func TestWebhook_DispatchesGateRun(t *testing.T) {
	ctx := context.Background()
	gateUC := newMockGateUC()
	uc := usecase.NewWebhook(gateUC, watchConfig())

	event := &model.WebhookEvent{
		ID:   "delivery-1",
		Type: model.EventTypePush,
		RawPayload: pushPayload(t, "example/ha-metoffice-datahub", "refs/heads/main",
			[]string{"custom_components/metoffice_datahub/manifest.json"}),
	}

	gt.NoError(t, uc.ProcessEvent(ctx, event))

	input := gateUC.waitForRun(t)
	gt.Value(t, input.Owner).Equal("example")
	gt.Value(t, input.Repo).Equal("ha-metoffice-datahub")
	gt.Value(t, input.CommitSHA).Equal("head123")
	gt.Value(t, input.ManifestPath).Equal("custom_components/metoffice_datahub/manifest.json")
}

func TestWebhook_IgnoresUnwatchedRepository(t *testing.T) {
	ctx := context.Background()
	gateUC := newMockGateUC()
	uc := usecase.NewWebhook(gateUC, watchConfig())

	event := &model.WebhookEvent{
		Type: model.EventTypePush,
		RawPayload: pushPayload(t, "someone/else", "refs/heads/main",
			[]string{"custom_components/metoffice_datahub/manifest.json"}),
	}

	gt.NoError(t, uc.ProcessEvent(ctx, event))
	gateUC.assertNoRun(t)
}

func TestWebhook_IgnoresUnwatchedBranch(t *testing.T) {
	ctx := context.Background()
	gateUC := newMockGateUC()
	uc := usecase.NewWebhook(gateUC, watchConfig())

	event := &model.WebhookEvent{
		Type: model.EventTypePush,
		RawPayload: pushPayload(t, "example/ha-metoffice-datahub", "refs/heads/feature",
			[]string{"custom_components/metoffice_datahub/manifest.json"}),
	}

	gt.NoError(t, uc.ProcessEvent(ctx, event))
	gateUC.assertNoRun(t)
}

func TestWebhook_IgnoresPushNotTouchingManifest(t *testing.T) {
	ctx := context.Background()
	gateUC := newMockGateUC()
	uc := usecase.NewWebhook(gateUC, watchConfig())

	event := &model.WebhookEvent{
		Type: model.EventTypePush,
		RawPayload: pushPayload(t, "example/ha-metoffice-datahub", "refs/heads/main",
			[]string{"README.md"}),
	}

	gt.NoError(t, uc.ProcessEvent(ctx, event))
	gateUC.assertNoRun(t)
}

func TestWebhook_IgnoresUnsupportedEvent(t *testing.T) {
	ctx := context.Background()
	gateUC := newMockGateUC()
	uc := usecase.NewWebhook(gateUC, watchConfig())

	event := &model.WebhookEvent{
		Type:       model.EventTypeUnknown,
		RawPayload: []byte(`{}`),
	}

	gt.NoError(t, uc.ProcessEvent(ctx, event))
	gateUC.assertNoRun(t)
}

func TestWebhook_ManifestRemovalTriggersGate(t *testing.T) {
	ctx := context.Background()
	gateUC := newMockGateUC()
	uc := usecase.NewWebhook(gateUC, watchConfig())

	payload := map[string]any{
		"ref": "refs/heads/main",
		"repository": map[string]any{
			"full_name": "example/ha-metoffice-datahub",
		},
		"head_commit": map[string]any{
			"id": "head123",
		},
		"commits": []map[string]any{
			{
				"id":      "head123",
				"removed": []string{"custom_components/metoffice_datahub/manifest.json"},
			},
		},
	}
	data, err := json.Marshal(payload)
	gt.NoError(t, err)

	gt.NoError(t, uc.ProcessEvent(ctx, &model.WebhookEvent{
		Type:       model.EventTypePush,
		RawPayload: data,
	}))
	gateUC.waitForRun(t)
}

func TestWebhook_InvalidPayload(t *testing.T) {
	ctx := context.Background()
	gateUC := newMockGateUC()
	uc := usecase.NewWebhook(gateUC, watchConfig())

	err := uc.ProcessEvent(ctx, &model.WebhookEvent{
		Type:       model.EventTypePush,
		RawPayload: []byte(`not json`),
	})
	gt.Error(t, err)
}
