package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishReachesAllGameSubscribers(t *testing.T) {
	t.Parallel()

	b := New()
	ch1 := b.Subscribe("g1")
	ch2 := b.Subscribe("g1")
	other := b.Subscribe("g2")

	b.Publish("g1", []byte("snapshot"))

	assert.Equal(t, []byte("snapshot"), <-ch1)
	assert.Equal(t, []byte("snapshot"), <-ch2)
	assert.Empty(t, other, "unrelated game must not receive the payload")
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	t.Parallel()

	b := New()
	ch := b.Subscribe("g1")
	b.Unsubscribe("g1", ch)

	b.Publish("g1", []byte("snapshot"))
	assert.Empty(t, ch)
}

func TestSlowSubscriberIsSkipped(t *testing.T) {
	t.Parallel()

	b := New()
	ch := b.Subscribe("g1")
	for i := 0; i < 100; i++ {
		b.Publish("g1", []byte("x")) // must never block
	}
	assert.Len(t, ch, cap(ch))
}
