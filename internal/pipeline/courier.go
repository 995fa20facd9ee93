// Package pipeline wires the directory walker, path filter, loader, and
// writer stages together over Courier channels, and owns the statistics
// accumulators the writer reports at shutdown.
package pipeline

import "sync"

// Courier is a bounded, multi-producer/multi-consumer FIFO with explicit
// sender/receiver registration, generalizing the teacher's
// single-producer/fan-out SerialMux subscriber registry to a
// fan-in/fan-out queue with backpressure. A receiver blocks until at least
// one sender is registered; a sender blocks until at least one receiver is
// registered — this holds however stages are started, since "registered"
// only latches closed once every sender (receiver) that ever registered
// has retired, never merely because none has registered yet. When the last
// sender calls DoneSending, pending items drain and receivers then observe
// end-of-stream; when the last receiver calls DoneReceiving, senders stop
// blocking and further Send calls fail fast.
type Courier[T any] struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond

	queue    []T
	capacity int

	senders   int
	receivers int

	// closedForSend is latched true once the receiver side has
	// permanently given up (the last receiver called DoneReceiving after
	// at least one had registered). Before any receiver ever registers,
	// Send and WaitUntilReadyToSend block rather than fail fast, so a
	// producer that starts before its consumers have registered isn't
	// mistaken for talking to a closed channel.
	closedForSend bool

	// closedForReceive is latched true once the sender side has
	// permanently finished (the last sender called DoneSending after at
	// least one had registered). Before any sender ever registers,
	// Receive blocks rather than reporting end-of-stream, so a consumer
	// that starts before its producers have registered isn't mistaken
	// for talking to an already-finished stream.
	closedForReceive bool
}

// NewCourier returns a Courier with the given bounded capacity.
func NewCourier[T any](capacity int) *Courier[T] {
	c := &Courier[T]{capacity: capacity}
	c.notFull = sync.NewCond(&c.mu)
	c.notEmpty = sync.NewCond(&c.mu)
	return c
}

// RegisterSender declares one more producer on this courier.
func (c *Courier[T]) RegisterSender() {
	c.mu.Lock()
	c.senders++
	c.mu.Unlock()
}

// RegisterReceiver declares one more consumer on this courier.
func (c *Courier[T]) RegisterReceiver() {
	c.mu.Lock()
	c.receivers++
	c.mu.Unlock()
	c.notFull.Broadcast()
}

// DoneSending retires one producer. When the last one retires, any blocked
// receivers are woken to drain the queue and then observe end-of-stream.
func (c *Courier[T]) DoneSending() {
	c.mu.Lock()
	c.senders--
	latch := c.senders == 0
	if latch {
		c.closedForReceive = true
	}
	c.mu.Unlock()
	if latch {
		c.notEmpty.Broadcast()
	}
}

// DoneReceiving retires one consumer. When the last one retires, any
// blocked senders are woken so they can observe the channel is no longer
// worth sending on.
func (c *Courier[T]) DoneReceiving() {
	c.mu.Lock()
	c.receivers--
	latch := c.receivers == 0
	if latch {
		c.closedForSend = true
	}
	c.mu.Unlock()
	if latch {
		c.notFull.Broadcast()
	}
}

// WaitUntilReadyToSend blocks until at least one receiver is registered or
// the receiver side has permanently closed.
func (c *Courier[T]) WaitUntilReadyToSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.receivers == 0 && !c.closedForSend {
		c.notFull.Wait()
	}
}

// Send blocks while the queue is full, or while no receiver has registered
// yet, as long as the receiver side has not permanently closed. It returns
// false without enqueuing once the receiver side has closed.
func (c *Courier[T]) Send(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for (len(c.queue) >= c.capacity || c.receivers == 0) && !c.closedForSend {
		c.notFull.Wait()
	}
	if c.closedForSend {
		return false
	}

	c.queue = append(c.queue, item)
	c.notEmpty.Signal()
	return true
}

// Receive blocks while the queue is empty, unless the sender side has
// permanently finished. It returns (zero, false) once the queue is drained
// and every sender has retired — end of stream.
func (c *Courier[T]) Receive() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.queue) == 0 && !c.closedForReceive {
		c.notEmpty.Wait()
	}

	if len(c.queue) == 0 {
		var zero T
		return zero, false
	}

	item := c.queue[0]
	c.queue = c.queue[1:]
	c.notFull.Signal()
	return item, true
}
