package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"speech_therapy_backend/internal/model"
	"speech_therapy_backend/internal/repository"
	"speech_therapy_backend/internal/util"
	"speech_therapy_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	catalogCategoriesKey = "catalog:categories"
	catalogItemsPrefix   = "catalog:items:"
	catalogCacheTTL      = 10 * time.Minute
)

// ActivityService 练习内容目录。目录内容基本静态，读路径走 Redis 缓存，
// 写入后主动失效。孩子画像和推荐结果不缓存。
type ActivityService struct {
	activityRepo *repository.ActivityRepository
	redis        *redis.Client
}

func NewActivityService(activityRepo *repository.ActivityRepository, redisClient *redis.Client) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		redis:        redisClient,
	}
}

func (s *ActivityService) ListCategories(ctx context.Context) ([]model.ActivityCategory, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, catalogCategoriesKey).Result(); err == nil {
			var categories []model.ActivityCategory
			if json.Unmarshal([]byte(cached), &categories) == nil {
				return categories, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("catalog cache read failed", zap.Error(err))
		}
	}

	categories, err := s.activityRepo.ListCategories()
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, catalogCategoriesKey, categories)
	return categories, nil
}

func (s *ActivityService) GetCategory(categoryID string) (*model.ActivityCategory, error) {
	category, err := s.activityRepo.FindCategoryByID(categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

func (s *ActivityService) ListItems(ctx context.Context, categoryID string) ([]model.ActivityItem, error) {
	if _, err := s.GetCategory(categoryID); err != nil {
		return nil, err
	}

	key := catalogItemsPrefix + categoryID
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, key).Result(); err == nil {
			var items []model.ActivityItem
			if json.Unmarshal([]byte(cached), &items) == nil {
				return items, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("catalog cache read failed", zap.Error(err))
		}
	}

	items, err := s.activityRepo.ListItemsByCategory(categoryID)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, items)
	return items, nil
}

func (s *ActivityService) CreateCategory(ctx context.Context, category *model.ActivityCategory) error {
	if err := s.activityRepo.CreateCategory(category); err != nil {
		return err
	}
	s.cacheInvalidate(ctx, catalogCategoriesKey)
	return nil
}

func (s *ActivityService) CreateItem(ctx context.Context, item *model.ActivityItem) error {
	if _, err := s.GetCategory(item.CategoryID); err != nil {
		return err
	}
	if err := s.activityRepo.CreateItem(item); err != nil {
		return err
	}
	s.cacheInvalidate(ctx, catalogItemsPrefix+item.CategoryID)
	return nil
}

func (s *ActivityService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, data, catalogCacheTTL).Err(); err != nil {
		logger.Log.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *ActivityService) cacheInvalidate(ctx context.Context, key string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		logger.Log.Warn("catalog cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}
