package metrics

import (
	"context"
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends the contents of reg to a Pushgateway under job. An empty url
// is a no-op.
func Push(ctx context.Context, url, job string, reg *prom.Registry, grouping map[string]string) error {
	if url == "" || reg == nil {
		return nil
	}
	p := push.New(url, job).Gatherer(reg)
	for k, v := range grouping {
		p = p.Grouping(k, v)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
