package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var errEngine = errors.New("engine rejected request")

// memStore is an in-memory Store with switchable failures.
type memStore struct {
	mu        sync.Mutex
	employees map[int64]Employee

	failGetAll bool
	failWrites bool
}

var _ Store = (*memStore)(nil)

func newMemStore(employees ...Employee) *memStore {
	s := &memStore{employees: map[int64]Employee{}}
	for _, e := range employees {
		s.employees[e.ID] = e
	}
	return s
}

func (s *memStore) GetAll(ctx context.Context) ([]Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failGetAll {
		return nil, fmt.Errorf("%w: %v", ErrOperationFailed, errEngine)
	}
	out := make([]Employee, 0, len(s.employees))
	for _, e := range s.employees {
		out = append(out, e)
	}
	return out, nil
}

func (s *memStore) Add(ctx context.Context, e Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites {
		return fmt.Errorf("%w: %v", ErrOperationFailed, errEngine)
	}
	if _, ok := s.employees[e.ID]; ok {
		return ErrDuplicateKey
	}
	s.employees[e.ID] = e
	return nil
}

func (s *memStore) Update(ctx context.Context, e Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites {
		return fmt.Errorf("%w: %v", ErrOperationFailed, errEngine)
	}
	s.employees[e.ID] = e
	return nil
}

func (s *memStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites {
		return fmt.Errorf("%w: %v", ErrOperationFailed, errEngine)
	}
	delete(s.employees, id)
	return nil
}

func (s *memStore) ReplaceAll(ctx context.Context, employees []Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites {
		return fmt.Errorf("%w: %v", ErrOperationFailed, errEngine)
	}
	s.employees = map[int64]Employee{}
	for _, e := range employees {
		s.employees[e.ID] = e
	}
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.employees)
}

func (s *memStore) get(id int64) (Employee, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employees[id]
	return e, ok
}

type fakeNavigator struct {
	routes []string
}

func (n *fakeNavigator) Navigate(path string) { n.routes = append(n.routes, path) }

func (n *fakeNavigator) last() string {
	if len(n.routes) == 0 {
		return ""
	}
	return n.routes[len(n.routes)-1]
}

func newObservedLogger(t *testing.T) (*zap.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}
