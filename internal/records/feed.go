package records

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/TinoSanchez/app-achatrevente/pkg/logger"
	redisclient "github.com/TinoSanchez/app-achatrevente/pkg/redis"
	"github.com/sethvargo/go-retry"
)

// Feed propagates per-owner change notifications between API instances.
// Payloads carry no record data; subscribers re-read the list.
type Feed interface {
	// Publish announces that the owner's record set changed.
	Publish(ctx context.Context, ownerID string)
	// Subscribe yields a signal per change until the cancel func runs.
	Subscribe(ctx context.Context, ownerID string) (<-chan struct{}, func(), error)
}

// RedisFeed is the redis pub/sub change feed.
type RedisFeed struct {
	client *redisclient.Client
	logg   *logger.Logger
}

// NewRedisFeed builds the pub/sub backed feed.
func NewRedisFeed(client *redisclient.Client, logg *logger.Logger) (*RedisFeed, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &RedisFeed{client: client, logg: logg}, nil
}

// Publish announces a change with bounded retries. Delivery is
// best-effort: the write that triggered it has already committed, so a
// failed publish only delays subscribers until their next change.
func (f *RedisFeed) Publish(ctx context.Context, ownerID string) {
	channel := f.client.FeedChannel(ownerID)
	payload := fmt.Sprintf(`{"changedAt":%q}`, time.Now().UTC().Format(time.RFC3339Nano))

	backoff := retry.WithMaxRetries(3, retry.NewExponential(100*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := f.client.Publish(ctx, channel, payload); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		f.logg.Warn(f.logg.WithOwnerID(ctx, ownerID), "record change publish failed")
	}
}

// Subscribe relays pub/sub messages as bare signals.
func (f *RedisFeed) Subscribe(ctx context.Context, ownerID string) (<-chan struct{}, func(), error) {
	pubsub, err := f.client.Subscribe(ctx, f.client.FeedChannel(ownerID))
	if err != nil {
		return nil, nil, err
	}

	signals := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(signals)
		messages := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case _, ok := <-messages:
				if !ok {
					return
				}
				// Coalesce bursts: one pending signal is enough.
				select {
				case signals <- struct{}{}:
				default:
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}
	return signals, cancel, nil
}
