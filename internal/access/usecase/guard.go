package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"clubportal/internal/access/domain/model"
	apperrors "clubportal/internal/shared/errors"
	"clubportal/internal/shared/logger"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"
)

// GuardInterface decides whether a caller may open a view.
type GuardInterface interface {
	Check(ctx context.Context, view string, subject model.Subject) (*model.Decision, error)
	Views() []string
}

type compiledRule struct {
	rule    model.Rule
	program cel.Program
}

// Guard evaluates compiled view rules.
type Guard struct {
	env   *cel.Env
	mu    sync.RWMutex
	views map[string][]compiledRule
	log   logger.Logger
}

func newGuardEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Declarations(
			decls.NewVar("session", decls.Dyn),
			decls.NewVar("club", decls.Dyn),
		),
	)
}

// NewGuard compiles views. Any rule that does not compile fails construction.
func NewGuard(views []model.View, log logger.Logger) (*Guard, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	env, err := newGuardEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	g := &Guard{
		env:   env,
		views: make(map[string][]compiledRule, len(views)),
		log:   log.WithComponent("access"),
	}
	for _, v := range views {
		if err := g.Register(v); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Register compiles view and adds or replaces it.
func (g *Guard) Register(view model.View) error {
	if view.Name == "" {
		return apperrors.NewValidationError("view name is required")
	}
	rules := make([]compiledRule, 0, len(view.Rules))
	for _, r := range view.Rules {
		program, err := g.compile(r.Expression)
		if err != nil {
			return fmt.Errorf("view %s: %w", view.Name, err)
		}
		rules = append(rules, compiledRule{rule: r, program: program})
	}

	g.mu.Lock()
	g.views[view.Name] = rules
	g.mu.Unlock()
	return nil
}

func (g *Guard) compile(expression string) (cel.Program, error) {
	ast, issues := g.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compilation error: %w", issues.Err())
	}
	program, err := g.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}
	return program, nil
}

// Check runs the view's rules in order and stops at the first that fails.
func (g *Guard) Check(ctx context.Context, view string, subject model.Subject) (*model.Decision, error) {
	g.mu.RLock()
	rules, ok := g.views[view]
	g.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewNotFoundError("View").
			WithDetail("view", view).
			WithCause(apperrors.ErrUnknownView)
	}

	vars := subject.Vars()
	for _, r := range rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, _, err := r.program.Eval(vars)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to evaluate view rule").
				WithDetail("view", view).
				WithCause(err)
		}
		allowed, isBool := out.Value().(bool)
		if !isBool {
			return nil, apperrors.NewInternalError("view rule did not return a boolean").WithDetail("view", view)
		}
		if !allowed {
			g.log.WithFields(map[string]interface{}{
				"view":     view,
				"rule":     r.rule.Expression,
				"redirect": r.rule.Redirect,
			}).Debug("View access denied")
			return &model.Decision{View: view, Allowed: false, Redirect: r.rule.Redirect}, nil
		}
	}
	return &model.Decision{View: view, Allowed: true}, nil
}

// Views lists the registered view names, sorted.
func (g *Guard) Views() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, 0, len(g.views))
	for name := range g.views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
