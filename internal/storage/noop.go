package storage

import (
	"context"

	"ProductAdvisor/internal/pipeline"
)

// NoopRecorder discards everything. Used for dry runs.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) ReplaceClientResults(_ context.Context, _ pipeline.Result, _ string) error {
	return nil
}
func (n *NoopRecorder) RecordRun(_ context.Context, _ *pipeline.Summary) error { return nil }
func (n *NoopRecorder) SetPushNotification(_ context.Context, _, _ int, _ string) error {
	return nil
}
func (n *NoopRecorder) Close() error { return nil }
