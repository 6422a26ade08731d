package outbox

import "time"

func (d *Dispatcher) SetClock(now func() time.Time) { d.now = now }

func (d *Dispatcher) RetryDelay(attempts int) time.Duration { return d.retryDelay(attempts) }
