package usecase

import (
	"context"
	"strings"

	"clubportal/internal/discussion/domain/model"
	"clubportal/internal/discussion/domain/repository"
	apperrors "clubportal/internal/shared/errors"
	"clubportal/internal/shared/eventbus"
	"clubportal/internal/shared/logger"
	"clubportal/internal/shared/metrics"
)

// ReplyTargetMissingNotice is shown when a confirmed reply has no displayed parent.
const ReplyTargetMissingNotice = "This comment may have been removed."

// DiscussionUsecaseInterface is what the event-discussion view calls.
type DiscussionUsecaseInterface interface {
	Open(ctx context.Context, profileID, token, eventUID string) (model.Forest, error)
	Comment(ctx context.Context, profileID, token, eventUID, content string) (*CommentResult, error)
	Reply(ctx context.Context, profileID, token, parentUID, content string) (*ReplyResult, error)
	Close(profileID string)
}

// CommentResult is the outcome of posting a top-level comment.
type CommentResult struct {
	Comment model.Comment `json:"comment"`
	Forest  model.Forest  `json:"comments"`
}

// ReplyResult is the outcome of posting a reply. Applied is false when the parent was
// no longer displayed; Notice then carries the user-facing message.
type ReplyResult struct {
	Comment model.Comment `json:"comment"`
	Forest  model.Forest  `json:"comments"`
	Applied bool          `json:"applied"`
	Notice  string        `json:"notice,omitempty"`
}

// DiscussionUsecase applies server-confirmed comments to the displayed thread.
type DiscussionUsecase struct {
	gateway repository.CommentGateway
	board   *Board
	bus     eventbus.EventBusInterface
	log     logger.Logger
}

// NewDiscussionUsecase creates the usecase. bus may be nil.
func NewDiscussionUsecase(gateway repository.CommentGateway, board *Board, bus eventbus.EventBusInterface, log logger.Logger) *DiscussionUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if board == nil {
		board = NewBoard()
	}
	return &DiscussionUsecase{
		gateway: gateway,
		board:   board,
		bus:     bus,
		log:     log.WithComponent("discussion"),
	}
}

// Open fetches the event's forest and makes it the profile's displayed thread.
func (u *DiscussionUsecase) Open(ctx context.Context, profileID, token, eventUID string) (model.Forest, error) {
	if eventUID == "" {
		return nil, apperrors.NewValidationError("event uid is required")
	}
	forest, err := u.gateway.EventComments(ctx, token, eventUID)
	if err != nil {
		return nil, err
	}
	if forest == nil {
		forest = model.Forest{}
	}
	u.board.Open(profileID, eventUID, forest)
	return forest, nil
}

// Comment posts a top-level comment and prepends the confirmed node.
func (u *DiscussionUsecase) Comment(ctx context.Context, profileID, token, eventUID, content string) (*CommentResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewValidationError("comment cannot be empty")
	}

	created, err := u.gateway.PostComment(ctx, token, eventUID, content)
	if err != nil {
		return nil, err
	}

	thread, ok := u.board.Current(profileID)
	if !ok || thread.EventUID() != eventUID {
		forest, err := u.Open(ctx, profileID, token, eventUID)
		if err != nil {
			return nil, err
		}
		return &CommentResult{Comment: *created, Forest: forest}, nil
	}

	forest := thread.ApplyTopLevel(*created)
	metrics.RecordReconciliation("top_level", true)
	u.publish(ctx, eventbus.EventTypeCommentAdded, profileID, map[string]interface{}{
		"event_uid":   eventUID,
		"comment_uid": created.ID,
	})
	return &CommentResult{Comment: *created, Forest: forest}, nil
}

// Reply posts a reply to parentUID and appends the confirmed node in the displayed
// thread. A missing parent is reported in the result, not as an error.
func (u *DiscussionUsecase) Reply(ctx context.Context, profileID, token, parentUID, content string) (*ReplyResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewValidationError("reply cannot be empty")
	}
	thread, ok := u.board.Current(profileID)
	if !ok {
		return nil, apperrors.NewNotFoundError("open discussion")
	}

	created, err := u.gateway.PostReply(ctx, token, parentUID, content)
	if err != nil {
		return nil, err
	}

	forest, applied := thread.ApplyReply(parentUID, *created)
	metrics.RecordReconciliation("reply", applied)
	result := &ReplyResult{Comment: *created, Forest: forest, Applied: applied}
	data := map[string]interface{}{
		"event_uid":   thread.EventUID(),
		"parent_uid":  parentUID,
		"comment_uid": created.ID,
	}
	if !applied {
		result.Notice = ReplyTargetMissingNotice
		u.log.WithFields(data).Warn("Reply target not in displayed thread")
		u.publish(ctx, eventbus.EventTypeReplyTargetMissing, profileID, data)
		return result, nil
	}
	u.publish(ctx, eventbus.EventTypeReplyAdded, profileID, data)
	return result, nil
}

// Close discards the profile's displayed thread.
func (u *DiscussionUsecase) Close(profileID string) {
	u.board.Close(profileID)
}

func (u *DiscussionUsecase) publish(ctx context.Context, eventType, profileID string, data map[string]interface{}) {
	if u.bus == nil {
		return
	}
	if err := u.bus.Publish(ctx, eventbus.NewProfileEvent(eventType, profileID, "discussion", data)); err != nil {
		u.log.Warnf("Failed to publish %s: %v", eventType, err)
	}
}
