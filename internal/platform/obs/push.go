package obs

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PushJobMetrics replaces the Pushgateway group for job with everything g
// gathers. Batch processes exit before a scrape could reach them, so this is
// how their counters leave the process. An empty url is a no-op.
func PushJobMetrics(ctx context.Context, url, job string, g prometheus.Gatherer) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, "logistics_"+job).Gatherer(g).PushContext(ctx); err != nil {
		return fmt.Errorf("push %s metrics: %w", job, err)
	}
	return nil
}
