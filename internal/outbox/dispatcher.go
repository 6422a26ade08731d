package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"

	"github.com/labstack/echo/v4"
)

// 配信先。WebSocketハブ、Redisブリッジ、RabbitMQ、Kafka
type Publisher interface {
	Name() string
	Publish(ctx context.Context, env Envelope) error
}

type Options struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	// 失敗時の待ち。RetryBaseから倍々でRetryMaxまで
	RetryBase time.Duration
	RetryMax  time.Duration
}

// 未配信のoutbox行を取り出して全Publisherへ流す。各Publisherに少なくとも1回は届く
type Dispatcher struct {
	tx         repo.TransactionManager
	publishers []Publisher
	opts       Options
	log        echo.Logger
	wake       chan struct{}
	now        func() time.Time
}

func NewDispatcher(tx repo.TransactionManager, publishers []Publisher, opts Options, log echo.Logger) *Dispatcher {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 20
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = 2 * time.Second
	}
	if opts.RetryMax <= 0 {
		opts.RetryMax = 5 * time.Minute
	}
	return &Dispatcher{
		tx:         tx,
		publishers: publishers,
		opts:       opts,
		log:        log,
		wake:       make(chan struct{}, 1),
		now:        time.Now,
	}
}

// LISTENの通知から呼ばれる。ブロックしない
func (d *Dispatcher) Wake() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.opts.PollInterval)
	defer ticker.Stop()

	for {
		for {
			n, err := d.DrainOnce(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				d.log.Errorf("outbox: drain: %v", err)
				break
			}
			// バッチが満杯なら続けて取りに行く
			if n < d.opts.BatchSize {
				break
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-d.wake:
		}
	}
}

// 1バッチ処理して配信を終えた件数を返す
func (d *Dispatcher) DrainOnce(ctx context.Context) (int, error) {
	dispatched := 0
	err := d.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		now := d.now()
		evs, err := r.Outbox().ClaimPending(ctx, d.opts.BatchSize, d.opts.MaxAttempts, now)
		if err != nil {
			return err
		}

		done := make([]int64, 0, len(evs))
		for _, ev := range evs {
			delivered, err := d.publish(ctx, ev)
			if err != nil {
				next := now.Add(d.retryDelay(ev.Attempts))
				d.log.Warnf("outbox: event %d (%s.%s) failed (attempt %d, retry at %s): %v",
					ev.ID, ev.Topic, ev.Operation, ev.Attempts+1, next.Format(time.RFC3339), err)
				if err := r.Outbox().MarkFailed(ctx, ev.ID, delivered, err.Error(), next); err != nil {
					return err
				}
				continue
			}
			done = append(done, ev.ID)
		}

		if err := r.Outbox().MarkDispatched(ctx, done, now); err != nil {
			return err
		}
		dispatched = len(done)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return dispatched, nil
}

// まだ届いていないpublisherにだけ送る。成功済みの名前を返す
func (d *Dispatcher) publish(ctx context.Context, ev model.OutboxEvent) ([]string, error) {
	env := EnvelopeFrom(ev)
	already := ev.DeliveredSet()

	var delivered []string
	var errs []error
	for _, p := range d.publishers {
		if already[p.Name()] {
			delivered = append(delivered, p.Name())
			continue
		}
		if err := p.Publish(ctx, env); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		delivered = append(delivered, p.Name())
	}
	return delivered, errors.Join(errs...)
}

// attempts回失敗済みの行の次の待ち時間
func (d *Dispatcher) retryDelay(attempts int) time.Duration {
	delay := d.opts.RetryBase
	for i := 0; i < attempts && delay < d.opts.RetryMax; i++ {
		delay *= 2
	}
	if delay > d.opts.RetryMax {
		delay = d.opts.RetryMax
	}
	return delay
}
