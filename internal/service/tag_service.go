package service

import (
	"context"

	"github.com/google/uuid"

	"taskhub/internal/model"
	"taskhub/internal/repository"
)

// TagService provides helpers around tags, including the tag copy-forward
// used when a recurring series advances.
type TagService struct {
	tagRepo  *repository.TagRepository
	taskRepo *repository.TaskRepository
}

func NewTagService(tagRepo *repository.TagRepository, taskRepo *repository.TaskRepository) *TagService {
	return &TagService{tagRepo: tagRepo, taskRepo: taskRepo}
}

func (s *TagService) List(ctx context.Context, userID uuid.UUID) ([]model.Tag, error) {
	return s.tagRepo.ListByUser(ctx, userID)
}

func (s *TagService) GetOrCreate(ctx context.Context, userID uuid.UUID, name string) (*model.Tag, error) {
	return s.tagRepo.GetOrCreate(ctx, userID, name)
}

// ListForTask returns the tag names attached to a task.
func (s *TagService) ListForTask(ctx context.Context, task *model.Task) ([]string, error) {
	tags, err := s.taskRepo.ListTags(ctx, task)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return names, nil
}

// CopyTags attaches the source task's tags to the destination task.
func (s *TagService) CopyTags(ctx context.Context, from, to *model.Task) error {
	tags, err := s.taskRepo.ListTags(ctx, from)
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	return s.taskRepo.ReplaceTags(ctx, to, tags)
}
