package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang-news-analyzer/internal/analyzer/config"
	"golang-news-analyzer/internal/analyzer/dto"
	"golang-news-analyzer/internal/analyzer/repository"
	"golang-news-analyzer/pkg/common"
	"golang-news-analyzer/pkg/logger"
	"golang-news-analyzer/pkg/telegram"
	"golang-news-analyzer/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// NewsAnalysisStreamService moves article ids through the news analysis
// Redis stream: producers enqueue, workers run the pipeline per entry.
type NewsAnalysisStreamService interface {
	// Enqueue pushes up to limit backlog articles onto the stream.
	Enqueue(ctx context.Context, limit int) (int, error)
	EnqueueNews(ctx context.Context, newsID int64, force bool) (string, error)
	ProcessTask(ctx context.Context)
	ProcessRetries(ctx context.Context)
}

type newsAnalysisStreamService struct {
	cfg             *config.Config
	log             *logger.Logger
	redisClient     *redis.Client
	newsRepo        repository.NewsRawRepository
	analysisService NewsAnalysisService
	generativeMacro bool
	telegramBot     telegram.Notifier
}

// NewNewsAnalysisStreamService creates a new NewsAnalysisStreamService.
// generativeMacro selects heuristic-only macro articles for re-analysis.
func NewNewsAnalysisStreamService(
	cfg *config.Config,
	log *logger.Logger,
	redisClient *redis.Client,
	newsRepo repository.NewsRawRepository,
	analysisService NewsAnalysisService,
	generativeMacro bool,
	telegramBot telegram.Notifier,
) NewsAnalysisStreamService {
	return &newsAnalysisStreamService{
		cfg:             cfg,
		log:             log,
		redisClient:     redisClient,
		newsRepo:        newsRepo,
		analysisService: analysisService,
		generativeMacro: generativeMacro,
		telegramBot:     telegramBot,
	}
}

func (s *newsAnalysisStreamService) Enqueue(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = s.cfg.Batch.DefaultLimit
	}
	ids, err := s.newsRepo.FindUnanalyzedIDs(ctx, limit, s.generativeMacro)
	if err != nil {
		return 0, fmt.Errorf("failed to find unanalyzed news: %w", err)
	}

	enqueued := 0
	for _, id := range ids {
		if _, err := s.EnqueueNews(ctx, id, false); err != nil {
			return enqueued, err
		}
		enqueued++
	}
	s.log.Info("News enqueued for analysis", logger.IntField("enqueued", enqueued), logger.StringField("stream", common.RedisStreamNewsAnalysis))
	return enqueued, nil
}

func (s *newsAnalysisStreamService) EnqueueNews(ctx context.Context, newsID int64, force bool) (string, error) {
	payload, err := encodeStreamPayload(dto.StreamDataNewsAnalysis{NewsID: newsID, Force: force})
	if err != nil {
		return "", err
	}
	args := &redis.XAddArgs{
		Stream: common.RedisStreamNewsAnalysis,
		Values: map[string]interface{}{common.RedisStreamPayloadField: payload},
	}
	if s.cfg.Redis.StreamMaxLen > 0 {
		args.MaxLen = s.cfg.Redis.StreamMaxLen
		args.Approx = true
	}
	id, err := s.redisClient.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("failed to add news %d to stream: %w", newsID, err)
	}
	return id, nil
}

func (s *newsAnalysisStreamService) ProcessTask(ctx context.Context) {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamNewsAnalysis, ">"},
		Count:    1,
		Block:    2 * time.Second,
	}).Result()
	if err != nil {
		// Cancellation and empty reads are expected on shutdown and idle periods.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return
		}
		s.log.Error("Failed to read from stream", logger.ErrorField(err))
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	message := streams[0].Messages[0]
	streamData, err := decodeStreamPayload(message.Values)
	if err != nil {
		s.log.Error("Failed to decode news analysis task", logger.ErrorField(err), logger.StringField("message_id", message.ID))
		// A malformed entry never succeeds; drop it instead of retrying.
		_ = s.AckNDel(ctx, common.RedisStreamNewsAnalysis, message.ID)
		return
	}

	s.log.Debug("Processing news analysis task", logger.Int64Field("news_id", streamData.NewsID))
	if err := s.analyze(ctx, streamData); err != nil {
		s.log.Error("Failed to analyze news", logger.ErrorField(err), logger.StringField("message_id", message.ID), logger.Int64Field("news_id", streamData.NewsID))
		return
	}
	if err := s.AckNDel(ctx, common.RedisStreamNewsAnalysis, message.ID); err != nil {
		return
	}
	s.log.Debug("News analysis task processed successfully", logger.Int64Field("news_id", streamData.NewsID))
}

// analyze treats a missing article as done, since retrying cannot help.
func (s *newsAnalysisStreamService) analyze(ctx context.Context, data dto.StreamDataNewsAnalysis) error {
	_, err := s.analysisService.RunPipeline(ctx, data.NewsID, dto.PipelineOptions{Force: data.Force})
	if errors.Is(err, ErrNewsNotFound) {
		s.log.Warn("News not found, dropping task", logger.Int64Field("news_id", data.NewsID))
		return nil
	}
	return err
}

func (s *newsAnalysisStreamService) AckNDel(ctx context.Context, streamName string, messageID string) error {
	if err := s.redisClient.XAck(ctx, streamName, common.RedisStreamGroup, messageID).Err(); err != nil {
		s.log.Error("Failed to acknowledge news analysis task", logger.ErrorField(err), logger.StringField("message_id", messageID))
		return err
	}
	if err := s.redisClient.XDel(ctx, streamName, messageID).Err(); err != nil {
		s.log.Error("Failed to delete news analysis task", logger.ErrorField(err), logger.StringField("message_id", messageID))
		return err
	}
	return nil
}

func (s *newsAnalysisStreamService) ProcessRetries(ctx context.Context) {
	msgs, _, err := s.redisClient.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   common.RedisStreamNewsAnalysis,
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer + "-retry",
		MinIdle:  s.cfg.Analyzer.RedisStreamNewsAnalysisMaxIdleDuration,
		Start:    "0",
		Count:    1,
	}).Result()
	if err != nil {
		s.log.Error("Failed to claim news analysis task on retry", logger.ErrorField(err))
		return
	}
	if len(msgs) == 0 {
		s.log.Debug("Retry No pending messages found", logger.StringField("stream", common.RedisStreamNewsAnalysis))
		return
	}

	msg := msgs[0]
	pendingInfo, err := s.redisClient.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: common.RedisStreamNewsAnalysis,
		Group:  common.RedisStreamGroup,
		Start:  msg.ID,
		End:    msg.ID,
		Count:  1,
	}).Result()
	if err != nil {
		s.log.Error("Failed to get pending info", logger.ErrorField(err))
		return
	}
	if len(pendingInfo) == 0 {
		s.log.Warn("pending msg not found, but exist on xautoclaim",
			logger.StringField("stream", common.RedisStreamNewsAnalysis),
			logger.StringField("message_id", msg.ID))
		return
	}

	streamData, err := decodeStreamPayload(msg.Values)
	if err != nil {
		s.log.Error("Failed to decode news analysis task", logger.ErrorField(err), logger.StringField("message_id", msg.ID))
		_ = s.AckNDel(ctx, common.RedisStreamNewsAnalysis, msg.ID)
		return
	}

	maxRetry := s.cfg.Analyzer.RedisStreamNewsAnalysisMaxRetry
	if pendingInfo[0].RetryCount >= int64(maxRetry) {
		s.log.Error("pending msg retry count exceeded",
			logger.StringField("stream", common.RedisStreamNewsAnalysis),
			logger.StringField("message_id", msg.ID),
			logger.Int64Field("news_id", streamData.NewsID),
			logger.Int64Field("retry_count", pendingInfo[0].RetryCount),
			logger.IntField("max_retry", maxRetry),
		)
		msgTelegram := telegram.FormatErrorAlertMessage(utils.TimeNowKST(),
			"news analysis",
			"retry count exceeded",
			fmt.Sprintf("news_id=%d force=%t", streamData.NewsID, streamData.Force))
		if err := s.telegramBot.SendMessage(msgTelegram); err != nil {
			s.log.Error("Failed to send telegram message retry exceeded", logger.ErrorField(err), logger.Int64Field("news_id", streamData.NewsID))
		}
		_ = s.AckNDel(ctx, common.RedisStreamNewsAnalysis, msg.ID)
		return
	}

	if err := s.analyze(ctx, streamData); err != nil {
		s.log.Error("Failed to analyze news on retry", logger.ErrorField(err), logger.StringField("message_id", msg.ID), logger.Int64Field("news_id", streamData.NewsID))
		return
	}
	if err := s.AckNDel(ctx, common.RedisStreamNewsAnalysis, msg.ID); err != nil {
		return
	}
	s.log.Info("Retry news analysis task processed successfully", logger.Int64Field("news_id", streamData.NewsID))
}

func encodeStreamPayload(data dto.StreamDataNewsAnalysis) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal stream payload: %w", err)
	}
	return string(b), nil
}

func decodeStreamPayload(values map[string]interface{}) (dto.StreamDataNewsAnalysis, error) {
	var data dto.StreamDataNewsAnalysis
	raw, ok := values[common.RedisStreamPayloadField].(string)
	if !ok {
		return data, fmt.Errorf("field %q not found or not a string in stream message", common.RedisStreamPayloadField)
	}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return data, fmt.Errorf("failed to unmarshal stream payload: %w", err)
	}
	if data.NewsID <= 0 {
		return data, fmt.Errorf("invalid news_id %d in stream payload", data.NewsID)
	}
	return data, nil
}
