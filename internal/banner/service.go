package banner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pharmakart/storefront/internal/catalog/domain"
)

var ErrNoActiveBanners = errors.New("no active banners")

const (
	listKey     = "banners:active"
	rotationKey = "banners:rotation"
)

type BannerLister interface {
	ListActiveBanners(ctx context.Context) ([]*domain.Banner, error)
}

// Service serves the storefront's promotional banners. The active set is
// cached in Redis and rotation state is a shared Redis counter, so every
// frontend instance walks the same sequence. Redis failures degrade to
// direct repository reads.
type Service struct {
	repo    BannerLister
	client  *redis.Client
	logger  *zap.Logger
	baseTTL time.Duration
}

func NewService(repo BannerLister, client *redis.Client, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		client:  client,
		logger:  logger,
		baseTTL: 5 * time.Minute,
	}
}

func (s *Service) Active(ctx context.Context) ([]*domain.Banner, error) {
	data, err := s.client.Get(ctx, listKey).Bytes()
	if err == nil {
		var banners []*domain.Banner
		if err2 := json.Unmarshal(data, &banners); err2 == nil {
			return banners, nil
		}
		s.logger.Warn("corrupt banner cache entry, refetching", zap.Error(err))
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("banner cache get failed", zap.Error(err))
	}

	banners, err := s.repo.ListActiveBanners(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active banners: %w", err)
	}

	if encoded, err := json.Marshal(banners); err == nil {
		jitter := time.Duration(rand.Intn(60)) * time.Second
		if errSet := s.client.Set(ctx, listKey, encoded, s.baseTTL+jitter).Err(); errSet != nil {
			s.logger.Warn("banner cache set failed", zap.Error(errSet))
		}
	}

	return banners, nil
}

// Next returns the next banner in the shared rotation.
func (s *Service) Next(ctx context.Context) (*domain.Banner, error) {
	banners, err := s.Active(ctx)
	if err != nil {
		return nil, err
	}
	if len(banners) == 0 {
		return nil, ErrNoActiveBanners
	}

	tick, err := s.client.Incr(ctx, rotationKey).Result()
	if err != nil {
		s.logger.Warn("banner rotation counter failed", zap.Error(err))
		return banners[0], nil
	}

	return banners[(tick-1)%int64(len(banners))], nil
}
