package portalapi

import (
	"context"
	"net/url"

	clubmodel "clubportal/internal/clubs/domain/model"
	discussionmodel "clubportal/internal/discussion/domain/model"
	sessionmodel "clubportal/internal/session/domain/model"
)

// LoginResponse is the body of POST /auth/login and /auth/register.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	UID         string `json:"uid"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type commentRequest struct {
	EventUID string `json:"event_uid,omitempty"`
	Content  string `json:"content"`
}

func seg(s string) string { return url.PathEscape(s) }

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out LoginResponse
	if err := c.post(ctx, "/auth/login", "/auth/login", "", loginRequest{Email: email, Password: password}, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	return c.post(ctx, "/auth/register", "/auth/register", "", registerRequest{Name: name, Email: email, Password: password}, nil)
}

// CurrentUser returns the profile behind token.
func (c *Client) CurrentUser(ctx context.Context, token string) (*sessionmodel.User, error) {
	var out sessionmodel.User
	if err := c.get(ctx, "/auth/me", "/auth/me", token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Clubs lists every club.
func (c *Client) Clubs(ctx context.Context, token string) ([]clubmodel.Club, error) {
	var out []clubmodel.Club
	err := c.get(ctx, "/clubs/", "/clubs/", token, &out)
	return out, err
}

// MyClubs lists the caller's clubs with their role.
func (c *Client) MyClubs(ctx context.Context, token string) ([]clubmodel.Club, error) {
	var out []clubmodel.Club
	err := c.get(ctx, "/clubs/my-clubs", "/clubs/my-clubs", token, &out)
	return out, err
}

// Club fetches one club.
func (c *Client) Club(ctx context.Context, token, uid string) (*clubmodel.Club, error) {
	var out clubmodel.Club
	if err := c.get(ctx, "/clubs/{uid}", "/clubs/"+seg(uid), token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClubMembers lists a club's members.
func (c *Client) ClubMembers(ctx context.Context, token, uid string) ([]clubmodel.Member, error) {
	var out []clubmodel.Member
	err := c.get(ctx, "/clubs/{uid}/members", "/clubs/"+seg(uid)+"/members", token, &out)
	return out, err
}

// JoinClub joins a club.
func (c *Client) JoinClub(ctx context.Context, token, uid string) error {
	return c.post(ctx, "/clubs/{uid}/join", "/clubs/"+seg(uid)+"/join", token, nil, nil)
}

// LeaveClub leaves a club.
func (c *Client) LeaveClub(ctx context.Context, token, uid string) error {
	return c.post(ctx, "/clubs/{uid}/leave", "/clubs/"+seg(uid)+"/leave", token, nil, nil)
}

// Events lists every event.
func (c *Client) Events(ctx context.Context, token string) ([]clubmodel.Event, error) {
	var out []clubmodel.Event
	err := c.get(ctx, "/events/", "/events/", token, &out)
	return out, err
}

// ClubEvents lists a club's events.
func (c *Client) ClubEvents(ctx context.Context, token, clubUID string) ([]clubmodel.Event, error) {
	var out []clubmodel.Event
	err := c.get(ctx, "/events/club/{uid}", "/events/club/"+seg(clubUID), token, &out)
	return out, err
}

// Event fetches one event.
func (c *Client) Event(ctx context.Context, token, uid string) (*clubmodel.Event, error) {
	var out clubmodel.Event
	if err := c.get(ctx, "/events/{uid}", "/events/"+seg(uid), token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// JoinEvent registers for an event.
func (c *Client) JoinEvent(ctx context.Context, token, uid string) error {
	return c.post(ctx, "/events/{uid}/join", "/events/"+seg(uid)+"/join", token, nil, nil)
}

// LeaveEvent cancels an event registration.
func (c *Client) LeaveEvent(ctx context.Context, token, uid string) error {
	return c.post(ctx, "/events/{uid}/leave", "/events/"+seg(uid)+"/leave", token, nil, nil)
}

// EventComments fetches an event's comment forest.
func (c *Client) EventComments(ctx context.Context, token, eventUID string) (discussionmodel.Forest, error) {
	var out discussionmodel.Forest
	err := c.get(ctx, "/comments/event/{uid}", "/comments/event/"+seg(eventUID), token, &out)
	return out, err
}

// PostComment posts a top-level comment and returns the confirmed node.
func (c *Client) PostComment(ctx context.Context, token, eventUID, content string) (*discussionmodel.Comment, error) {
	var out discussionmodel.Comment
	if err := c.post(ctx, "/comments/", "/comments/", token, commentRequest{EventUID: eventUID, Content: content}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PostReply posts a reply to commentUID and returns the confirmed node.
func (c *Client) PostReply(ctx context.Context, token, commentUID, content string) (*discussionmodel.Comment, error) {
	var out discussionmodel.Comment
	if err := c.post(ctx, "/comments/{uid}/reply", "/comments/"+seg(commentUID)+"/reply", token, commentRequest{Content: content}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
