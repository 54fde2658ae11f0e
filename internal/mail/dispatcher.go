package mail

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Dispatcher delivers messages in the background. Enqueue returns as soon as
// the message is queued; delivery failures are logged and never propagated to
// the caller.
type Dispatcher struct {
	sender Sender
	queue  chan Message
	log    zerolog.Logger

	once sync.Once
	wg   sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with a buffered queue and starts its
// delivery worker.
func NewDispatcher(sender Sender, log zerolog.Logger) *Dispatcher {
	d := &Dispatcher{
		sender: sender,
		queue:  make(chan Message, 64),
		log:    log,
	}

	d.wg.Add(1)
	go d.run()

	return d
}

// Enqueue hands a message to the delivery worker. If the queue is full the
// message is dropped with a log entry rather than blocking the request.
func (d *Dispatcher) Enqueue(msg Message) {
	select {
	case d.queue <- msg:
	default:
		d.log.Error().
			Str("template", msg.Template).
			Str("to", msg.To).
			Msg("mail queue full, dropping message")
	}
}

// Close stops accepting messages and waits for queued mail to drain.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := d.sender.Send(ctx, msg); err != nil {
			d.log.Error().Err(err).
				Str("template", msg.Template).
				Str("to", msg.To).
				Msg("failed to send email")
		} else {
			d.log.Debug().
				Str("template", msg.Template).
				Str("to", msg.To).
				Msg("email sent")
		}
		cancel()
	}
}
