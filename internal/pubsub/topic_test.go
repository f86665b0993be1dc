package pubsub

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLateSubscriberSeesOnlyFutureValues(t *testing.T) {
	var topic Topic[int]
	topic.Publish(1)

	var got []int
	unsubscribe := topic.Subscribe(func(v int) { got = append(got, v) })
	defer unsubscribe()

	topic.Publish(2)
	topic.Publish(3)
	assert.Equal(t, []int{2, 3}, got)
}

func TestSubscribersRunInOrder(t *testing.T) {
	var topic Topic[string]
	var order []string
	topic.Subscribe(func(v string) { order = append(order, "a:"+v) })
	topic.Subscribe(func(v string) { order = append(order, "b:"+v) })

	topic.Publish("x")
	assert.Equal(t, []string{"a:x", "b:x"}, order)
	assert.Equal(t, 2, topic.Len())
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	var topic Topic[int]
	calls := 0
	unsubscribe := topic.Subscribe(func(int) { calls++ })

	topic.Publish(1)
	unsubscribe()
	unsubscribe()
	topic.Publish(2)

	assert.Equal(t, 1, calls)
	assert.Zero(t, topic.Len())
}

func TestUnsubscribeFromCallback(t *testing.T) {
	var topic Topic[int]
	calls := 0
	var unsubscribe func()
	unsubscribe = topic.Subscribe(func(int) {
		calls++
		unsubscribe()
	})
	other := 0
	topic.Subscribe(func(int) { other++ })

	topic.Publish(1)
	topic.Publish(2)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, other)
}

func TestUnsubscribedBeforeTurnIsSkipped(t *testing.T) {
	var topic Topic[int]
	second := 0
	var unsubscribeSecond func()
	topic.Subscribe(func(int) { unsubscribeSecond() })
	unsubscribeSecond = topic.Subscribe(func(int) { second++ })

	topic.Publish(1)
	assert.Zero(t, second, "a subscriber removed earlier in the same publish is not called")
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	var topic Topic[int]
	var mu sync.Mutex
	total := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unsubscribe := topic.Subscribe(func(v int) {
				mu.Lock()
				total += v
				mu.Unlock()
			})
			unsubscribe()
		}()
		go func() {
			defer wg.Done()
			topic.Publish(1)
		}()
	}
	wg.Wait()
	assert.Zero(t, topic.Len())
}
