// Package storage is the durable key-value port behind client state: the session
// token and user snapshot, the selected club and the palette. Every profile gets
// its own namespace, the equivalent of one browser's local storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Persisted keys
const (
	KeyToken        = "token"
	KeyUser         = "user"
	KeySelectedClub = "selectedClub"
	KeyPalette      = "palette"
)

// ErrInvalidNamespace is returned when a namespace is empty or contains a separator.
var ErrInvalidNamespace = errors.New("storage: invalid namespace")

// Backend persists values for many namespaces.
type Backend interface {
	Get(ctx context.Context, namespace, key string) (string, bool, error)
	// Set writes every value or none of them.
	Set(ctx context.Context, namespace string, values map[string]string) error
	Remove(ctx context.Context, namespace string, keys ...string) error
	Close(ctx context.Context) error
}

// Pinger is implemented by backends that talk to a server.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store is a Backend bound to one namespace.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, values map[string]string) error
	Remove(ctx context.Context, keys ...string) error
}

type scopedStore struct {
	backend   Backend
	namespace string
}

// For binds backend to namespace.
func For(backend Backend, namespace string) (Store, error) {
	if err := ValidateNamespace(namespace); err != nil {
		return nil, err
	}
	return &scopedStore{backend: backend, namespace: namespace}, nil
}

// ValidateNamespace rejects namespaces that cannot be used as key prefixes or document ids.
func ValidateNamespace(namespace string) error {
	if namespace == "" || strings.ContainsAny(namespace, ":.$ ") {
		return fmt.Errorf("%w: %q", ErrInvalidNamespace, namespace)
	}
	return nil
}

func (s *scopedStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.backend.Get(ctx, s.namespace, key)
}

func (s *scopedStore) Set(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	return s.backend.Set(ctx, s.namespace, values)
}

func (s *scopedStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.backend.Remove(ctx, s.namespace, keys...)
}
