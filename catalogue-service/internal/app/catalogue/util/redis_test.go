package util

import (
	"context"
	"testing"
	"time"

	"relatos/catalogue-service/internal/app/catalogue/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CategoryCacheTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	cache     *RedisClient
}

func TestCategoryCacheSuite(t *testing.T) {
	suite.Run(t, new(CategoryCacheTestSuite))
}

func (s *CategoryCacheTestSuite) SetupSuite() {
	var err error
	s.miniRedis, err = miniredis.Run()
	require.NoError(s.T(), err)

	s.cache = NewRedisClientFrom(redis.NewClient(&redis.Options{Addr: s.miniRedis.Addr()}))
}

func (s *CategoryCacheTestSuite) SetupTest() {
	s.miniRedis.FlushAll()
}

func (s *CategoryCacheTestSuite) TearDownSuite() {
	s.cache.Close()
	s.miniRedis.Close()
}

func (s *CategoryCacheTestSuite) TestGetCategories_Miss() {
	categories, err := s.cache.GetCategories(context.Background())

	s.NoError(err)
	s.Nil(categories)
}

func (s *CategoryCacheTestSuite) TestSetThenGet() {
	ctx := context.Background()
	categories := []entity.Category{
		{Record: entity.Record{ID: 5}, Name: "Novela"},
		{Record: entity.Record{ID: 6}, Name: "Poesia"},
	}

	s.Require().NoError(s.cache.SetCategories(ctx, categories, time.Hour))

	cached, err := s.cache.GetCategories(ctx)
	s.NoError(err)
	s.Require().Len(cached, 2)
	s.Equal(int64(5), cached[0].ID)
	s.Equal("Poesia", cached[1].Name)
}

func (s *CategoryCacheTestSuite) TestSetCategories_Expires() {
	ctx := context.Background()

	s.Require().NoError(s.cache.SetCategories(ctx, []entity.Category{{Name: "Novela"}}, time.Minute))
	s.True(s.miniRedis.Exists(categoriesCacheKey))

	s.miniRedis.FastForward(2 * time.Minute)

	s.False(s.miniRedis.Exists(categoriesCacheKey))
}

func (s *CategoryCacheTestSuite) TestDeleteCategories() {
	ctx := context.Background()

	s.Require().NoError(s.cache.SetCategories(ctx, []entity.Category{{Name: "Novela"}}, time.Hour))
	s.Require().NoError(s.cache.DeleteCategories(ctx))

	cached, err := s.cache.GetCategories(ctx)
	s.NoError(err)
	s.Nil(cached)
}
