package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
)

// Pusher ships Registry to a Prometheus Pushgateway once a run ends. A batch
// job exits before any scrape could reach it.
type Pusher struct {
	pusher *push.Pusher
}

// NewPusher returns nil when url is empty; a nil *Pusher is a no-op.
func NewPusher(url, job string, grouping map[string]string) *Pusher {
	if url == "" {
		return nil
	}
	p := push.New(url, job).Gatherer(Registry)
	for k, v := range grouping {
		p = p.Grouping(k, v)
	}
	return &Pusher{pusher: p}
}

func (p *Pusher) Push(ctx context.Context) error {
	if p == nil {
		return nil
	}
	if err := p.pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
