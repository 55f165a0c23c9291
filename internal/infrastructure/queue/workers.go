package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/nirmaanhq/chatbot-system/internal/api/metrics"
	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
	"github.com/nirmaanhq/chatbot-system/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Handler consumes one inbound event terminally; it must never return.
type Handler interface {
	Handle(ctx context.Context, msg ports.InboundMessage)
}

// WorkerPool routes inbound message events to a fixed set of workers using
// consistent hashing on the normalized sender phone. Events from one phone
// are therefore serialized, so concurrent webhook deliveries cannot
// interleave a single user's step transitions, while distinct phones proceed
// in parallel.
type WorkerPool struct {
	workers []chan ports.InboundMessage
	handler Handler
	log     zerolog.Logger
}

// NewWorkerPool creates a WorkerPool with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewWorkerPool(numWorkers int, handler Handler, log zerolog.Logger) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	p := &WorkerPool{
		workers: make([]chan ports.InboundMessage, numWorkers),
		handler: handler,
		log:     log,
	}
	for i := range p.workers {
		p.workers[i] = make(chan ports.InboundMessage, channelBuffer)
	}
	return p
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (p *WorkerPool) Start(ctx context.Context) {
	for i, ch := range p.workers {
		go p.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an event to the worker responsible for its sender. The
// webhook acknowledgement has already been sent by the time this is called;
// processing is fully detached from the request/response lifecycle.
func (p *WorkerPool) Enqueue(msg ports.InboundMessage) {
	idx := p.shardIndex(domain.NormalizePhone(msg.From))
	p.workers[idx] <- msg
	metrics.QueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(p.workers[idx])))
}

// shardIndex maps a phone deterministically to a worker index.
func (p *WorkerPool) shardIndex(phone string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(phone))
	return int(h.Sum32()) % len(p.workers)
}

func (p *WorkerPool) runWorker(ctx context.Context, id int, ch <-chan ports.InboundMessage) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			p.handler.Handle(ctx, msg)
			metrics.QueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
		}
	}
}
