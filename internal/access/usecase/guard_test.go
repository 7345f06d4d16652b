package usecase

import (
	"context"
	"testing"

	"clubportal/internal/access/domain/model"
	apperrors "clubportal/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultGuard(t *testing.T) *Guard {
	t.Helper()
	g, err := NewGuard(model.DefaultViews(), nil)
	require.NoError(t, err)
	return g
}

func TestGuard_DefaultTable(t *testing.T) {
	g := newDefaultGuard(t)
	anon := model.Subject{}
	noClub := model.Subject{Authenticated: true, UserUID: "u1"}
	member := model.Subject{Authenticated: true, UserUID: "u1", ClubSelected: true, ClubCount: 2}

	tests := []struct {
		view     string
		subject  model.Subject
		allowed  bool
		redirect string
	}{
		{"login", anon, true, ""},
		{"register", anon, true, ""},
		{"home", anon, false, model.RedirectLogin},
		{"home", noClub, true, ""},
		{"club", anon, false, model.RedirectLogin},
		{"event", anon, false, model.RedirectLogin},
		{"settings", noClub, true, ""},
		{"clubs", noClub, true, ""},
		{"dashboard", anon, false, model.RedirectLogin},
		{"dashboard", noClub, false, model.RedirectCreateClub},
		{"dashboard", member, true, ""},
		{"events", noClub, false, model.RedirectCreateClub},
		{"events", member, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.view, func(t *testing.T) {
			d, err := g.Check(context.Background(), tt.view, tt.subject)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.redirect, d.Redirect)
			assert.Equal(t, tt.view, d.View)
		})
	}
}

func TestGuard_UnknownView(t *testing.T) {
	g := newDefaultGuard(t)
	_, err := g.Check(context.Background(), "admin", model.Subject{Authenticated: true})
	assert.True(t, apperrors.IsNotFound(err))
	assert.ErrorIs(t, err, apperrors.ErrUnknownView)
}

func TestGuard_CustomRuleUsesUser(t *testing.T) {
	g := newDefaultGuard(t)
	require.NoError(t, g.Register(model.View{
		Name: "staff",
		Rules: []model.Rule{{
			Expression: `session.authenticated && session.user.email.endsWith("@staff.example.edu")`,
			Redirect:   "/",
		}},
	}))

	d, err := g.Check(context.Background(), "staff", model.Subject{Authenticated: true, UserEmail: "a@staff.example.edu"})
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = g.Check(context.Background(), "staff", model.Subject{Authenticated: true, UserEmail: "a@example.edu"})
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, "/", d.Redirect)

	d, err = g.Check(context.Background(), "staff", model.Subject{})
	require.NoError(t, err)
	assert.False(t, d.Allowed)
}

func TestGuard_InvalidExpressionRejected(t *testing.T) {
	_, err := NewGuard([]model.View{{Name: "bad", Rules: []model.Rule{{Expression: "session.("}}}}, nil)
	assert.Error(t, err)

	g := newDefaultGuard(t)
	assert.True(t, apperrors.IsValidation(g.Register(model.View{})))
}

func TestGuard_NonBooleanRule(t *testing.T) {
	g, err := NewGuard([]model.View{{Name: "odd", Rules: []model.Rule{{Expression: "club.count"}}}}, nil)
	require.NoError(t, err)
	_, err = g.Check(context.Background(), "odd", model.Subject{ClubCount: 1})
	assert.Error(t, err)
}

func TestGuard_Views(t *testing.T) {
	g := newDefaultGuard(t)
	assert.Contains(t, g.Views(), "dashboard")
	assert.Len(t, g.Views(), len(model.DefaultViews()))
}
