package worker

import (
	"context"
	"testing"
	"time"

	"github.com/bitleak/lmstfy/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fzscan/internal/sync/framework"
	"fzscan/pkg/lmstfyx"
	"fzscan/pkg/logger"
)

func noopProc(ctx context.Context, job *client.Job) *lmstfyx.JobResp {
	return lmstfyx.Success(nil)
}

func TestWorkerStartReportsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		subCfg  *framework.SubscriberConfig
		procCfg *framework.ProcessorConfig
		errText string
	}{
		{
			name:    "processor without timeout",
			subCfg:  &framework.SubscriberConfig{QueueName: "q", Concurrency: 1},
			procCfg: &framework.ProcessorConfig{Concurrency: 1, BufferSize: 1},
			errText: "processor timeout",
		},
		{
			name:    "subscriber without queue",
			subCfg:  &framework.SubscriberConfig{Concurrency: 1},
			procCfg: &framework.ProcessorConfig{Concurrency: 1, BufferSize: 1, Timeout: time.Second},
			errText: "queue name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorkerInstance(context.Background(), "progress", tt.subCfg, tt.procCfg,
				&memSource{}, noopProc, logger.NewNopLogger())

			done := make(chan error, 1)
			go func() { done <- w.Start() }()

			select {
			case err := <-done:
				require.Error(t, err)
				assert.Contains(t, err.Error(), "progress")
				assert.Contains(t, err.Error(), tt.errText)
			case <-time.After(time.Second):
				t.Fatal("start did not return")
			}

			// 启动失败后仍可正常关闭
			stopped := make(chan struct{})
			go func() {
				w.Shutdown()
				close(stopped)
			}()
			select {
			case <-stopped:
			case <-time.After(time.Second):
				t.Fatal("shutdown hung")
			}
		})
	}
}
