package service

import (
	"achievements_tracker_backend/internal/docstore"
	"achievements_tracker_backend/internal/model"
	"achievements_tracker_backend/internal/repository"
	"achievements_tracker_backend/internal/util"
	"achievements_tracker_backend/pkg/logger"
	"achievements_tracker_backend/pkg/monitoring"
	"achievements_tracker_backend/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const DefaultMaxRetries = 5

type AchievementService struct {
	Repo       *repository.AchievementGroupRepository
	Validate   *validator.Validate
	MaxRetries int
	Now        func() time.Time
}

func NewAchievementService(repo *repository.AchievementGroupRepository, maxRetries int) *AchievementService {
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	return &AchievementService{
		Repo:       repo,
		Validate:   model.NewValidator(),
		MaxRetries: maxRetries,
		Now:        time.Now,
	}
}

func (s *AchievementService) validate(v interface{}) error {
	if err := s.Validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", util.ErrInvalidInput, err)
	}
	return nil
}

func translateStoreError(err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return util.ErrAchievementNotFound
	}
	return err
}

func (s *AchievementService) List(ctx context.Context, userID string) (groups []model.AchievementGroup, err error) {
	ctx, span := tracing.StartSpan(ctx, "AchievementService.List", userID)
	defer func() { tracing.EndSpan(span, err) }()

	return s.Repo.List(ctx, userID)
}

func (s *AchievementService) Get(ctx context.Context, userID, groupID string) (group *model.AchievementGroup, err error) {
	ctx, span := tracing.StartSpan(ctx, "AchievementService.Get", userID)
	defer func() { tracing.EndSpan(span, err) }()

	current, err := s.Repo.Get(ctx, userID, groupID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return &current.Group, nil
}

func (s *AchievementService) Create(ctx context.Context, userID string, req model.CreateAchievementGroupRequest) (group *model.AchievementGroup, err error) {
	ctx, span := tracing.StartSpan(ctx, "AchievementService.Create", userID)
	defer func() { tracing.EndSpan(span, err) }()

	if err := s.validate(req); err != nil {
		return nil, err
	}

	group = &model.AchievementGroup{
		Name:         req.Name,
		Description:  *req.Description,
		CreatedAt:    s.Now().UnixMilli(),
		Achievements: model.ItemsFromRequests(req.Achievements),
	}
	if err := s.Repo.Create(ctx, userID, group); err != nil {
		return nil, err
	}

	logger.Log.Info("成就组已创建", zap.String("userId", userID), zap.String("groupId", group.ID))
	return group, nil
}

// Update merges the fields present in req into the stored group.
func (s *AchievementService) Update(ctx context.Context, userID, groupID string, req model.UpdateAchievementGroupRequest) (group *model.AchievementGroup, err error) {
	ctx, span := tracing.StartSpan(ctx, "AchievementService.Update", userID)
	defer func() { tracing.EndSpan(span, err) }()

	if err := s.validate(req); err != nil {
		return nil, err
	}

	patch := repository.GroupPatch{Name: req.Name, Description: req.Description}
	if req.Achievements != nil {
		patch.Achievements = model.ItemsFromRequests(req.Achievements)
	}
	return s.mutate(ctx, "update", userID, groupID, func(*model.AchievementGroup) repository.GroupPatch {
		return patch
	})
}

// AppendItem adds item at the end of the group's achievements.
func (s *AchievementService) AppendItem(ctx context.Context, userID, groupID string, req model.AchievementItemRequest) (group *model.AchievementGroup, err error) {
	ctx, span := tracing.StartSpan(ctx, "AchievementService.AppendItem", userID)
	defer func() { tracing.EndSpan(span, err) }()

	if err := s.validate(req); err != nil {
		return nil, err
	}

	item := req.Item()
	return s.mutate(ctx, "append_item", userID, groupID, func(current *model.AchievementGroup) repository.GroupPatch {
		items := make([]model.AchievementItem, 0, len(current.Achievements)+1)
		items = append(items, current.Achievements...)
		return repository.GroupPatch{Achievements: append(items, item)}
	})
}

// mutate reads the group, derives a patch from it and writes the patch conditioned on the
// version that was read. A version conflict restarts from the read.
func (s *AchievementService) mutate(ctx context.Context, op, userID, groupID string, build func(current *model.AchievementGroup) repository.GroupPatch) (*model.AchievementGroup, error) {
	for attempt := 0; ; attempt++ {
		current, err := s.Repo.Get(ctx, userID, groupID)
		if err != nil {
			return nil, translateStoreError(err)
		}

		updated, err := s.Repo.Update(ctx, userID, groupID, build(&current.Group), current.Version)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, docstore.ErrConflict) {
			return nil, translateStoreError(err)
		}
		if attempt >= s.MaxRetries {
			logger.Log.Warn("version conflict retries exhausted",
				zap.String("op", op),
				zap.String("userId", userID),
				zap.String("groupId", groupID),
				zap.Int("attempts", attempt+1),
			)
			return nil, util.ErrConcurrentModification
		}
		monitoring.ConflictRetries.WithLabelValues(op).Inc()
		logger.Log.Debug("version conflict, retrying",
			zap.String("op", op),
			zap.String("groupId", groupID),
			zap.Int("attempt", attempt+1),
		)
	}
}

// Delete reports whether a group was removed.
func (s *AchievementService) Delete(ctx context.Context, userID, groupID string) (deleted bool, err error) {
	ctx, span := tracing.StartSpan(ctx, "AchievementService.Delete", userID)
	defer func() { tracing.EndSpan(span, err) }()

	deleted, err = s.Repo.Delete(ctx, userID, groupID)
	if err != nil {
		return false, err
	}
	if deleted {
		logger.Log.Info("成就组已删除", zap.String("userId", userID), zap.String("groupId", groupID))
	}
	return deleted, nil
}

func (s *AchievementService) Ping(ctx context.Context) error {
	return s.Repo.Ping(ctx)
}
