package store

import (
	"context"

	"github.com/NafisaTasnimR/UpNext/internal/models"
)

type CommentStore struct{ s *Store }

func (s *Store) Comments() CommentStore { return CommentStore{s} }

func (c CommentStore) AddComment(ctx context.Context, comment *models.Comment) error {
	return c.s.conn(ctx).Create(comment).Error
}

func (c CommentStore) ListComments(ctx context.Context, taskID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := c.s.conn(ctx).Where("task_id = ?", taskID).Order("created_at, id").Find(&comments).Error
	return comments, err
}

func (c CommentStore) AddAttachment(ctx context.Context, attachment *models.Attachment) error {
	return c.s.conn(ctx).Create(attachment).Error
}

func (c CommentStore) ListAttachments(ctx context.Context, taskID uint) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := c.s.conn(ctx).Where("task_id = ?", taskID).Order("created_at, id").Find(&attachments).Error
	return attachments, err
}
