package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packline-io/packline/internal/channel"
)

// S1: create a channel, produce a single record, a consumer on group 0
// receives it.
func TestScenarioS1_SingleProduceSingleConsume(t *testing.T) {
	app := channel.NewApp()
	app.CreateChannel(testContext(t), "t", 1)
	ch, ok := app.GetChannel("t", 1)
	require.True(t, ok)

	ch.Producer().Produce([]uint32{7})

	records, err := ch.Consumer(0).ConsumeTimeout(testContext(t), 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []uint32{7}, records)
}

// A consume call made before any data exists blocks; it is only satisfied
// once a producer wakes it with the record it was waiting for.
func TestConsumeFutureWakeup_BlocksUntilProduce(t *testing.T) {
	ch := channel.NewChannel()
	consumer := ch.Consumer(0)

	type result struct {
		records []uint32
		err     error
	}
	done := make(chan result, 1)
	go func() {
		records, err := consumer.ConsumeTimeout(testContext(t), 2*time.Second)
		done <- result{records, err}
	}()

	select {
	case <-done:
		require.Fail(t, "consume returned before any data was produced")
	case <-time.After(100 * time.Millisecond):
		// still pending, as expected
	}

	ch.Producer().Produce([]uint32{42})

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, []uint32{42}, r.records)
	case <-time.After(2 * time.Second):
		require.Fail(t, "consume did not wake up after produce")
	}
}

// With a very short timeout and nothing ever produced, Consume keeps
// waiting past the deadline rather than returning an empty batch; it only
// ends because the context is canceled.
func TestConsumeNeverReturnsEmptyBatch(t *testing.T) {
	ch := channel.NewChannel()
	consumer := ch.Consumer(0)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	records, err := consumer.ConsumeTimeout(ctx, 20*time.Millisecond)
	require.Error(t, err)
	assert.Nil(t, records)
}

// S2: produce, consume returns the batch; a second consume on the same
// group, started before anything new is produced, stays pending until the
// next produce wakes it with exactly the new records.
func TestScenarioS2_PendingConsumeFlushedByNextProduce(t *testing.T) {
	ch := channel.NewChannel()
	producer := ch.Producer()
	consumer := ch.Consumer(0)

	producer.Produce([]uint32{1, 2, 3, 4})
	first, err := consumer.ConsumeTimeout(testContext(t), 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3, 4}, first)

	type result struct {
		records []uint32
		err     error
	}
	done := make(chan result, 1)
	go func() {
		records, err := consumer.ConsumeTimeout(testContext(t), 200*time.Millisecond)
		done <- result{records, err}
	}()

	select {
	case <-done:
		require.Fail(t, "second consume resolved before data was produced")
	case <-time.After(50 * time.Millisecond):
	}

	producer.Produce([]uint32{5, 6})

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, []uint32{5, 6}, r.records)
	case <-time.After(2 * time.Second):
		require.Fail(t, "pending consume was not flushed by the next produce")
	}
}

// S3: two consumer groups, one already consuming mid-stream, one that
// subscribes after both produces; the early group sees the batches
// separately, the late group sees the whole history in one batch.
func TestScenarioS3_GroupsObserveIndependently(t *testing.T) {
	ch := channel.NewChannel()
	producer := ch.Producer()
	groupZero := ch.Consumer(0)

	producer.Produce([]uint32{1, 2, 3, 4})
	batch1, err := groupZero.ConsumeTimeout(testContext(t), 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3, 4}, batch1)

	producer.Produce([]uint32{5, 6})
	batch2, err := groupZero.ConsumeTimeout(testContext(t), 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []uint32{5, 6}, batch2)

	groupOne := ch.Consumer(1)
	batch3, err := groupOne.ConsumeTimeout(testContext(t), 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3, 4, 5, 6}, batch3)
}

// S6: subscribing to a nonexistent topic leaves nothing to consume from,
// and doesn't take down the control connection's ability to serve other
// topics subsequently.
func TestScenarioS6_MissingTopicHasNoChannel(t *testing.T) {
	app := channel.NewApp()
	_, ok := app.GetChannel("missing", 1)
	assert.False(t, ok)

	app.CreateChannel(testContext(t), "present", 1)
	ch, ok := app.GetChannel("present", 1)
	require.True(t, ok)
	ch.Producer().Produce([]uint32{1})
	records, err := ch.Consumer(0).ConsumeTimeout(testContext(t), 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1}, records)
}
