package usecase

import (
	"context"

	"clubportal/internal/clubs/domain/model"
	"clubportal/internal/clubs/domain/repository"
	apperrors "clubportal/internal/shared/errors"
	"clubportal/internal/shared/logger"

	"golang.org/x/sync/errgroup"
)

// Messages shown when the API gives no reason of its own.
const (
	MsgJoinClubFailed    = "Failed to join club"
	MsgLeaveClubFailed   = "Failed to leave club"
	MsgEventUpdateFailed = "Failed to update event registration"
	MsgClubLoadFailed    = "Failed to load club"
	MsgEventLoadFailed   = "Failed to load event"
)

// ClubsUsecaseInterface is what the club and event views call.
type ClubsUsecaseInterface interface {
	Clubs(ctx context.Context, token string) ([]model.Club, error)
	MyClubs(ctx context.Context, token string) ([]model.Club, error)
	Events(ctx context.Context, token string) ([]model.Event, error)
	ClubPage(ctx context.Context, token, clubUID string) (*model.ClubPage, error)
	EventPage(ctx context.Context, token, eventUID string) (*model.Event, error)
	JoinClub(ctx context.Context, profileID, token, clubUID string) (*model.ClubPage, error)
	LeaveClub(ctx context.Context, profileID, token, clubUID string) (*model.ClubPage, error)
	JoinEvent(ctx context.Context, profileID, token, eventUID string) (*model.Event, error)
	LeaveEvent(ctx context.Context, profileID, token, eventUID string) (*model.Event, error)
}

// ClubsUsecase loads club and event views and runs membership actions.
type ClubsUsecase struct {
	gateway repository.ClubGateway
	pending *PendingActions
	log     logger.Logger
}

// NewClubsUsecase creates the usecase.
func NewClubsUsecase(gateway repository.ClubGateway, log logger.Logger) *ClubsUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &ClubsUsecase{
		gateway: gateway,
		pending: NewPendingActions(),
		log:     log.WithComponent("clubs"),
	}
}

// Clubs lists every club.
func (u *ClubsUsecase) Clubs(ctx context.Context, token string) ([]model.Club, error) {
	clubs, err := u.gateway.Clubs(ctx, token)
	if err != nil {
		return nil, err
	}
	return nonNil(clubs), nil
}

// MyClubs lists the caller's clubs.
func (u *ClubsUsecase) MyClubs(ctx context.Context, token string) ([]model.Club, error) {
	clubs, err := u.gateway.MyClubs(ctx, token)
	if err != nil {
		return nil, err
	}
	return nonNil(clubs), nil
}

// Events lists every event.
func (u *ClubsUsecase) Events(ctx context.Context, token string) ([]model.Event, error) {
	events, err := u.gateway.Events(ctx, token)
	if err != nil {
		return nil, err
	}
	return nonNil(events), nil
}

// ClubPage fetches the club, its members and its events concurrently.
func (u *ClubsUsecase) ClubPage(ctx context.Context, token, clubUID string) (*model.ClubPage, error) {
	if clubUID == "" {
		return nil, apperrors.NewValidationError("club uid is required")
	}

	var (
		club    *model.Club
		members []model.Member
		events  []model.Event
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		club, err = u.gateway.Club(gctx, token, clubUID)
		return err
	})
	g.Go(func() error {
		var err error
		members, err = u.gateway.ClubMembers(gctx, token, clubUID)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = u.gateway.ClubEvents(gctx, token, clubUID)
		return err
	})
	if err := g.Wait(); err != nil {
		u.log.WithFields(map[string]interface{}{"club_uid": clubUID, "error": err.Error()}).Warn("Club page fetch failed")
		return nil, surface(err, MsgClubLoadFailed)
	}
	if club == nil {
		return nil, apperrors.NewNotFoundError("Club")
	}

	execs, rest := model.SplitMembers(members)
	return &model.ClubPage{
		Club:    *club,
		Execs:   execs,
		Members: rest,
		Events:  nonNil(events),
	}, nil
}

// EventPage fetches one event.
func (u *ClubsUsecase) EventPage(ctx context.Context, token, eventUID string) (*model.Event, error) {
	if eventUID == "" {
		return nil, apperrors.NewValidationError("event uid is required")
	}
	event, err := u.gateway.Event(ctx, token, eventUID)
	if err != nil {
		return nil, surface(err, MsgEventLoadFailed)
	}
	if event == nil {
		return nil, apperrors.NewNotFoundError("Event")
	}
	return event, nil
}

// JoinClub joins the club and returns the refreshed page.
func (u *ClubsUsecase) JoinClub(ctx context.Context, profileID, token, clubUID string) (*model.ClubPage, error) {
	return u.clubAction(ctx, profileID, token, clubUID, "join", u.gateway.JoinClub, MsgJoinClubFailed)
}

// LeaveClub leaves the club and returns the refreshed page.
func (u *ClubsUsecase) LeaveClub(ctx context.Context, profileID, token, clubUID string) (*model.ClubPage, error) {
	return u.clubAction(ctx, profileID, token, clubUID, "leave", u.gateway.LeaveClub, MsgLeaveClubFailed)
}

// JoinEvent registers for the event and returns it refreshed.
func (u *ClubsUsecase) JoinEvent(ctx context.Context, profileID, token, eventUID string) (*model.Event, error) {
	return u.eventAction(ctx, profileID, token, eventUID, "join", u.gateway.JoinEvent)
}

// LeaveEvent cancels the registration and returns the event refreshed.
func (u *ClubsUsecase) LeaveEvent(ctx context.Context, profileID, token, eventUID string) (*model.Event, error) {
	return u.eventAction(ctx, profileID, token, eventUID, "leave", u.gateway.LeaveEvent)
}

type actionFunc func(ctx context.Context, token, uid string) error

func (u *ClubsUsecase) clubAction(ctx context.Context, profileID, token, clubUID, verb string, act actionFunc, failMsg string) (*model.ClubPage, error) {
	if clubUID == "" {
		return nil, apperrors.NewValidationError("club uid is required")
	}
	done, err := u.pending.Begin(pendingKey(profileID, "club", clubUID))
	if err != nil {
		return nil, err
	}
	defer done()

	if err := act(ctx, token, clubUID); err != nil {
		u.log.WithFields(map[string]interface{}{"club_uid": clubUID, "action": verb, "error": err.Error()}).Warn("Club membership action failed")
		return nil, surface(err, failMsg)
	}
	return u.ClubPage(ctx, token, clubUID)
}

func (u *ClubsUsecase) eventAction(ctx context.Context, profileID, token, eventUID, verb string, act actionFunc) (*model.Event, error) {
	if eventUID == "" {
		return nil, apperrors.NewValidationError("event uid is required")
	}
	done, err := u.pending.Begin(pendingKey(profileID, "event", eventUID))
	if err != nil {
		return nil, err
	}
	defer done()

	if err := act(ctx, token, eventUID); err != nil {
		u.log.WithFields(map[string]interface{}{"event_uid": eventUID, "action": verb, "error": err.Error()}).Warn("Event registration failed")
		return nil, surface(err, MsgEventUpdateFailed)
	}
	return u.EventPage(ctx, token, eventUID)
}

// surface rewrites err so its message is the one the view shows: the API's own message
// when it sent one, fallback otherwise.
func surface(err error, fallback string) error {
	msg := apperrors.UserMessage(err, fallback)
	status := 0
	if appErr, ok := apperrors.AsAppError(err); ok {
		if appErr.Message == msg {
			return appErr
		}
		if v, ok := appErr.Details["upstream_status"].(int); ok {
			status = v
		}
	}
	return apperrors.NewUpstreamError(msg, status).WithCause(err)
}

func pendingKey(profileID, kind, uid string) string {
	return profileID + "|" + kind + "|" + uid
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
