package framework

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bitleak/lmstfy/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fzscan/pkg/errorutil"
	"fzscan/pkg/lmstfyx"
	"fzscan/pkg/logger"
)

type memSource struct {
	mu    sync.Mutex
	queue []*Message
	acked []string
}

func (m *memSource) Consume(queue string, timeout time.Duration, ttr time.Duration) (*Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		time.Sleep(time.Millisecond)
		return nil, nil
	}
	msg := m.queue[0]
	m.queue = m.queue[1:]
	return msg, nil
}

func (m *memSource) Ack(queue string, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, jobID)
	return nil
}

func (m *memSource) ackedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.acked...)
}

func TestProcessorSettle(t *testing.T) {
	source := &memSource{}
	proc := func(ctx context.Context, job *client.Job) *lmstfyx.JobResp {
		switch string(job.Data) {
		case "retry":
			return lmstfyx.Release(nil)
		case "bad":
			return lmstfyx.Bury([]byte("bad payload"))
		case "boom":
			panic("boom")
		}
		return lmstfyx.Success(nil)
	}

	p := NewProcessor(&ProcessorConfig{Concurrency: 1, Timeout: time.Second}, proc, source, logger.NewNopLogger())
	ctx := context.Background()

	p.process(ctx, &Message{ID: "1", Queue: "q", Data: []byte("ok")}, 0)
	p.process(ctx, &Message{ID: "2", Queue: "q", Data: []byte("retry")}, 0)
	p.process(ctx, &Message{ID: "3", Queue: "q", Data: []byte("bad")}, 0)
	p.process(ctx, &Message{ID: "4", Queue: "q", Data: []byte("boom")}, 0)

	assert.Equal(t, []string{"1", "3"}, source.ackedIDs())
}

func TestSubscriberProcessorPipeline(t *testing.T) {
	source := &memSource{queue: []*Message{
		{ID: "a", Queue: "q", Data: []byte("ok")},
		{ID: "b", Queue: "q", Data: []byte("ok")},
	}}

	var mu sync.Mutex
	seen := make([]string, 0)
	proc := func(ctx context.Context, job *client.Job) *lmstfyx.JobResp {
		mu.Lock()
		seen = append(seen, job.ID)
		mu.Unlock()
		return lmstfyx.Success(nil)
	}

	inputChan := make(chan *Message, 4)
	sub := NewSubscriber(&SubscriberConfig{QueueName: "q", Concurrency: 1, Rate: time.Millisecond, ErrorBackoff: time.Millisecond}, source, logger.NewNopLogger())
	p := NewProcessor(&ProcessorConfig{Concurrency: 2, Timeout: time.Second}, proc, source, logger.NewNopLogger())

	ctx := context.Background()
	require.NoError(t, p.Start(ctx, inputChan))
	require.NoError(t, sub.Start(ctx, inputChan))

	require.Eventually(t, func() bool { return len(source.ackedIDs()) == 2 }, time.Second, 5*time.Millisecond)

	sub.Stop()
	sub.Wait()
	p.SignalShutdown()
	p.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"a", "b"}, seen)
}

func TestParseJob(t *testing.T) {
	var b BaseHandler
	err := b.ParseJob(context.Background(), []byte(`{"payload":{"data":{"request_id":"r1","action_type":"order_progress_recompute","id":"o1","data":{"reason":"scan"}}}}`))
	require.NoError(t, err)
	assert.Equal(t, "o1", b.GetMeta().ID)

	var payload struct {
		Reason string `json:"reason"`
	}
	require.NoError(t, b.DecodePayload(&payload))
	assert.Equal(t, "scan", payload.Reason)

	assert.Error(t, b.ParseJob(context.Background(), []byte(`{"payload":{}}`)))
	assert.Error(t, b.ParseJob(context.Background(), []byte(`not json`)))
}

func TestPreProcessorSteps(t *testing.T) {
	var ran []string
	step := func(name string, err error) Step {
		return Step{Name: name, Run: func(ctx context.Context) error {
			ran = append(ran, name)
			return err
		}}
	}

	require.NoError(t, NewPreProcessor(step("recompute", nil), step("notify", nil)).Run(context.Background()))
	assert.Equal(t, []string{"recompute", "notify"}, ran)

	ran = nil
	cause := errorutil.NonRetriable("order not found", nil)
	err := NewPreProcessor(step("recompute", cause), step("notify", nil)).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"recompute"}, ran)
	assert.Contains(t, err.Error(), "recompute")
	assert.False(t, errorutil.IsRetryable(err))

	ran = nil
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewPreProcessor(step("recompute", nil)).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ran)
}

type failingSource struct{}

func (failingSource) Consume(queue string, timeout time.Duration, ttr time.Duration) (*Message, error) {
	return nil, errors.New("connection refused")
}

func (failingSource) Ack(queue string, jobID string) error { return nil }

func TestSubscriberCountsConsecutiveFailures(t *testing.T) {
	sub := NewSubscriber(&SubscriberConfig{QueueName: "q", Concurrency: 1, ErrorBackoff: time.Millisecond},
		failingSource{}, logger.NewNopLogger())

	require.NoError(t, sub.Start(context.Background(), make(chan *Message)))
	require.Eventually(t, func() bool { return sub.ConsecutiveFailures() >= failureAlertThreshold },
		time.Second, 5*time.Millisecond)

	sub.Stop()
	sub.Wait()
}

func TestConfigValidation(t *testing.T) {
	assert.Error(t, NewSubscriber(&SubscriberConfig{Concurrency: 1}, &memSource{}, logger.NewNopLogger()).
		Start(context.Background(), make(chan *Message)))
	assert.Error(t, NewSubscriber(&SubscriberConfig{QueueName: "q"}, &memSource{}, logger.NewNopLogger()).
		Start(context.Background(), make(chan *Message)))
	assert.Error(t, NewProcessor(&ProcessorConfig{Timeout: time.Second}, nil, &memSource{}, logger.NewNopLogger()).
		Start(context.Background(), make(chan *Message)))
}
