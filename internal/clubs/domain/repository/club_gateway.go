package repository

import (
	"context"

	"clubportal/internal/clubs/domain/model"
)

// ClubGateway is the part of the club API the club and event views call.
type ClubGateway interface {
	Clubs(ctx context.Context, token string) ([]model.Club, error)
	MyClubs(ctx context.Context, token string) ([]model.Club, error)
	Club(ctx context.Context, token, uid string) (*model.Club, error)
	ClubMembers(ctx context.Context, token, uid string) ([]model.Member, error)
	JoinClub(ctx context.Context, token, uid string) error
	LeaveClub(ctx context.Context, token, uid string) error

	Events(ctx context.Context, token string) ([]model.Event, error)
	ClubEvents(ctx context.Context, token, clubUID string) ([]model.Event, error)
	Event(ctx context.Context, token, uid string) (*model.Event, error)
	JoinEvent(ctx context.Context, token, uid string) error
	LeaveEvent(ctx context.Context, token, uid string) error
}
