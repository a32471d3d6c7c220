package fakesessionrepo

import (
	"context"
	"sync"

	"github.com/jrsteele09/billing-admin/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo keeps the durable session in process memory. It backs the "memory" session store and the tests.
type FakeSessionRepo struct {
	values map[string]string
	lock   sync.RWMutex
	fail   error
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		values: make(map[string]string),
	}
}

func (r *FakeSessionRepo) Get(_ context.Context, key string) (string, bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	v, ok := r.values[key]
	return v, ok, nil
}

func (r *FakeSessionRepo) SetMany(_ context.Context, values map[string]string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.fail != nil {
		return r.fail
	}
	for k, v := range values {
		r.values[k] = v
	}
	return nil
}

func (r *FakeSessionRepo) Delete(_ context.Context, keys ...string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.fail != nil {
		return r.fail
	}
	for _, k := range keys {
		delete(r.values, k)
	}
	return nil
}

// FailWrites makes every later SetMany and Delete return err without changing anything. nil restores normal behaviour.
func (r *FakeSessionRepo) FailWrites(err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.fail = err
}

// Seed writes values directly, ignoring FailWrites.
func (r *FakeSessionRepo) Seed(values map[string]string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for k, v := range values {
		r.values[k] = v
	}
}

// Len reports how many keys are stored
func (r *FakeSessionRepo) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.values)
}
