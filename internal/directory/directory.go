// Package directory resolves accounts against the account service.
package directory

import (
	"context"
	"sync"

	"github.com/alfredjeanlab/tether/internal/model"
)

// Account is the subset of the account service record the registry needs.
type Account struct {
	ID     string
	Active bool
}

// Directory looks up accounts by ID.
type Directory interface {
	// GetAccount returns the account, a model.NotFoundError when the account
	// does not exist, or a model.UpstreamError when the account service is
	// unreachable.
	GetAccount(ctx context.Context, id string) (*Account, error)
	Close() error
}

// StaticDirectory serves accounts from an in-memory map. Used in tests and
// when no account service is configured.
type StaticDirectory struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

func NewStaticDirectory(accounts ...Account) *StaticDirectory {
	d := &StaticDirectory{accounts: make(map[string]Account, len(accounts))}
	for _, a := range accounts {
		d.accounts[a.ID] = a
	}
	return d
}

func (d *StaticDirectory) GetAccount(ctx context.Context, id string) (*Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.accounts[id]
	if !ok {
		return nil, &model.NotFoundError{Entity: "account", ID: id}
	}
	return &Account{ID: a.ID, Active: a.Active}, nil
}

// SetAccount adds or replaces an account.
func (d *StaticDirectory) SetAccount(a Account) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.accounts[a.ID] = a
}

func (d *StaticDirectory) Close() error {
	return nil
}

// PermissiveDirectory treats every account as existing and active. Used when
// no account service address is configured.
type PermissiveDirectory struct{}

func (PermissiveDirectory) GetAccount(_ context.Context, id string) (*Account, error) {
	return &Account{ID: id, Active: true}, nil
}

func (PermissiveDirectory) Close() error { return nil }
