package pipeline

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourierSendReceiveRoundTrip(t *testing.T) {
	c := NewCourier[int](4)
	c.RegisterSender()
	c.RegisterReceiver()

	require.True(t, c.Send(1))
	require.True(t, c.Send(2))

	v, ok := c.Receive()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = c.Receive()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestCourierEndOfStreamAfterLastSenderDone(t *testing.T) {
	c := NewCourier[int](4)
	c.RegisterSender()
	c.RegisterReceiver()

	require.True(t, c.Send(1))
	c.DoneSending()

	v, ok := c.Receive()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Receive()
	assert.False(t, ok, "queue is drained and no sender remains")
}

func TestCourierReceiveBlocksUntilSend(t *testing.T) {
	c := NewCourier[string](1)
	c.RegisterSender()
	c.RegisterReceiver()

	var wg sync.WaitGroup
	wg.Add(1)
	var got string
	var ok bool
	go func() {
		defer wg.Done()
		got, ok = c.Receive()
	}()

	time.Sleep(20 * time.Millisecond)
	require.True(t, c.Send("hello"))
	wg.Wait()

	assert.True(t, ok)
	assert.Equal(t, "hello", got)
}

func TestCourierSendBlocksUntilReceiverDrains(t *testing.T) {
	c := NewCourier[int](1)
	c.RegisterSender()
	c.RegisterReceiver()

	require.True(t, c.Send(1))

	done := make(chan bool, 1)
	go func() {
		done <- c.Send(2)
	}()

	select {
	case <-done:
		t.Fatal("send on a full queue should have blocked")
	case <-time.After(20 * time.Millisecond):
	}

	v, ok := c.Receive()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	assert.True(t, <-done)
}

func TestCourierWaitUntilReadyToSend(t *testing.T) {
	c := NewCourier[int](1)
	c.RegisterSender()

	ready := make(chan struct{})
	go func() {
		c.WaitUntilReadyToSend()
		close(ready)
	}()

	select {
	case <-ready:
		t.Fatal("should block without a registered receiver")
	case <-time.After(20 * time.Millisecond):
	}

	c.RegisterReceiver()

	select {
	case <-ready:
	case <-time.After(time.Second):
		t.Fatal("did not unblock after a receiver registered")
	}
}

func TestCourierSendFailsAfterLastReceiverDone(t *testing.T) {
	c := NewCourier[int](1)
	c.RegisterSender()
	c.RegisterReceiver()
	c.DoneReceiving()

	assert.False(t, c.Send(1), "sending with no receivers left should fail fast")
}

func TestCourierMultipleProducersPreserveEachOwnFIFOOrder(t *testing.T) {
	c := NewCourier[int](8)
	c.RegisterReceiver()

	var wg sync.WaitGroup
	for p := 0; p < 2; p++ {
		c.RegisterSender()
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			defer c.DoneSending()
			for i := 0; i < 3; i++ {
				c.Send(base + i)
			}
		}(p * 100)
	}

	var got []int
	for {
		v, ok := c.Receive()
		if !ok {
			break
		}
		got = append(got, v)
	}
	wg.Wait()

	var fromP0, fromP1 []int
	for _, v := range got {
		if v < 100 {
			fromP0 = append(fromP0, v)
		} else {
			fromP1 = append(fromP1, v)
		}
	}
	assert.Equal(t, []int{0, 1, 2}, fromP0)
	assert.Equal(t, []int{100, 101, 102}, fromP1)
	assert.Len(t, got, 6)
}
