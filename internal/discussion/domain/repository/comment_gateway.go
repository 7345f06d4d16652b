package repository

import (
	"context"

	"clubportal/internal/discussion/domain/model"
)

// CommentGateway is the part of the club API the discussion view calls.
type CommentGateway interface {
	EventComments(ctx context.Context, token, eventUID string) (model.Forest, error)
	PostComment(ctx context.Context, token, eventUID, content string) (*model.Comment, error)
	PostReply(ctx context.Context, token, commentUID, content string) (*model.Comment, error)
}
