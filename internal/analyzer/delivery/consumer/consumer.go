package consumer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang-news-analyzer/internal/analyzer/config"
	"golang-news-analyzer/internal/analyzer/service"
	"golang-news-analyzer/pkg/common"
	"golang-news-analyzer/pkg/logger"
	"golang-news-analyzer/pkg/utils"
)

// RedisConsumer runs the news analysis stream workers and the retry loop.
type RedisConsumer struct {
	cfg           *config.Config
	streamService service.NewsAnalysisStreamService
	logger        *logger.Logger
	stopChan      chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer.
func NewRedisConsumer(
	cfg *config.Config,
	streamService service.NewsAnalysisStreamService,
	log *logger.Logger,
) *RedisConsumer {
	return &RedisConsumer{
		cfg:           cfg,
		streamService: streamService,
		logger:        log,
		stopChan:      make(chan struct{}),
	}
}

// Start launches one stream handler per allowed concurrent task plus the
// retry ticker. It returns immediately.
func (c *RedisConsumer) Start(ctx context.Context) {
	c.logger.Info("Redis consumer started", logger.IntField("workers", c.cfg.Analyzer.MaxConcurrentTasks))
	for i := 0; i < max(c.cfg.Analyzer.MaxConcurrentTasks, 1); i++ {
		c.RegisterStreamHandler(ctx, c.streamService.ProcessTask,
			fmt.Sprintf("%s#%d", common.RedisStreamNewsAnalysis, i),
			c.cfg.Analyzer.RedisStreamNewsAnalysisTimeout)
	}

	c.RegisterTickerHandler(ctx, c.streamService.ProcessRetries,
		c.cfg.Analyzer.RedisStreamNewsAnalysisRetryInterval,
		c.cfg.Analyzer.RedisStreamNewsAnalysisTimeout,
		common.RedisStreamNewsAnalysis+"-retry")
}

func (c *RedisConsumer) RegisterStreamHandler(ctx context.Context, fn func(ctx context.Context), name string, timeout time.Duration) {
	c.logger.Info("Registering stream handler", logger.Field("name", name))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Stream handler stopping due to context cancellation", logger.Field("name", name))
				return
			case <-c.stopChan:
				c.logger.Info("Stream handler stopping", logger.Field("name", name))
				return
			default:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			}
		}
	})
}

func (c *RedisConsumer) RegisterTickerHandler(ctx context.Context, fn func(ctx context.Context), interval time.Duration, timeout time.Duration, name string) {
	c.logger.Info("Registering ticker handler",
		logger.Field("name", name),
		logger.Field("interval", interval),
		logger.Field("timeout", timeout))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			case <-ctx.Done():
				c.logger.Info("Ticker handler stopping due to context cancellation", logger.Field("name", name))
				return
			case <-c.stopChan:
				c.logger.Info("Ticker handler stopping", logger.Field("name", name))
				return
			}
		}
	})
}

// Stop signals every handler and waits for in-flight work to finish.
func (c *RedisConsumer) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}
