package test

import (
	"context"

	domainErrors "github.com/polkiloo/atm/internal/domain/errors"
	"github.com/polkiloo/atm/internal/domain/model"
	"github.com/polkiloo/atm/internal/domain/repository"
)

// AccountRepositoryStub stores accounts in-memory for tests.
type AccountRepositoryStub struct {
	Accounts map[int64]*model.Account
	Order    []int64
	Updates  []model.Account
	GetFn    func(context.Context, int64) (*model.Account, error)
	UpdateFn func(context.Context, *model.Account) error
	Err      error
}

// NewAccountRepositoryStub constructs the stub pre-populated with accounts.
func NewAccountRepositoryStub(accounts ...*model.Account) *AccountRepositoryStub {
	s := &AccountRepositoryStub{Accounts: make(map[int64]*model.Account)}
	for _, a := range accounts {
		s.Accounts[a.Number] = a.Clone()
		s.Order = append(s.Order, a.Number)
	}
	return s
}

// Get returns a copy of the stored account or not found.
func (s *AccountRepositoryStub) Get(ctx context.Context, number int64) (*model.Account, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, number)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if a, ok := s.Accounts[number]; ok {
		return a.Clone(), nil
	}
	return nil, domainErrors.ErrNotFound
}

// Create registers an account unless it already exists.
func (s *AccountRepositoryStub) Create(ctx context.Context, account *model.Account) error {
	if s.Err != nil {
		return s.Err
	}
	if s.Accounts == nil {
		s.Accounts = make(map[int64]*model.Account)
	}
	if _, exists := s.Accounts[account.Number]; exists {
		return domainErrors.ErrAlreadyExists
	}
	s.Accounts[account.Number] = account.Clone()
	s.Order = append(s.Order, account.Number)
	return nil
}

// Update records the call and applies the change.
func (s *AccountRepositoryStub) Update(ctx context.Context, account *model.Account) error {
	s.Updates = append(s.Updates, *account)
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, account)
	}
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.Accounts[account.Number]; !ok {
		return domainErrors.ErrNotFound
	}
	s.Accounts[account.Number] = account.Clone()
	return nil
}

// List returns accounts in creation order.
func (s *AccountRepositoryStub) List(ctx context.Context) ([]model.Account, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	result := make([]model.Account, 0, len(s.Order))
	for _, number := range s.Order {
		result = append(result, *s.Accounts[number])
	}
	return result, nil
}

// InventoryRepositoryStub holds one bundle and records updates.
type InventoryRepositoryStub struct {
	Bundle   model.NoteBundle
	Updates  []model.NoteBundle
	UpdateFn func(context.Context, model.NoteBundle) error
	Err      error
}

// Get returns the configured bundle.
func (s *InventoryRepositoryStub) Get(ctx context.Context) (model.NoteBundle, error) {
	if s.Err != nil {
		return model.NoteBundle{}, s.Err
	}
	return s.Bundle, nil
}

// Update records the call and applies the change.
func (s *InventoryRepositoryStub) Update(ctx context.Context, inv model.NoteBundle) error {
	s.Updates = append(s.Updates, inv)
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, inv)
	}
	if s.Err != nil {
		return s.Err
	}
	s.Bundle = inv
	return nil
}

// LedgerRepositoryStub collects appended records.
type LedgerRepositoryStub struct {
	Records  []model.Transaction
	AppendFn func(context.Context, model.Transaction) error
	Err      error
}

// Append records the transaction.
func (s *LedgerRepositoryStub) Append(ctx context.Context, txn model.Transaction) error {
	if s.AppendFn != nil {
		return s.AppendFn(ctx, txn)
	}
	if s.Err != nil {
		return s.Err
	}
	s.Records = append(s.Records, txn)
	return nil
}

// ListByAccount filters stored records in append order.
func (s *LedgerRepositoryStub) ListByAccount(ctx context.Context, number int64) ([]model.Transaction, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var result []model.Transaction
	for _, txn := range s.Records {
		if txn.AccountNumber == number {
			result = append(result, txn)
		}
	}
	return result, nil
}

// StoreStub bundles the repository stubs behind the Factory contract.
type StoreStub struct {
	AccountRepo   *AccountRepositoryStub
	InventoryRepo *InventoryRepositoryStub
	LedgerRepo    *LedgerRepositoryStub
	ApplyFn       func(context.Context, *model.Account, model.NoteBundle, model.Transaction) error
}

// NewStoreStub constructs a store with initialized sub-stubs.
func NewStoreStub(accounts ...*model.Account) *StoreStub {
	return &StoreStub{
		AccountRepo:   NewAccountRepositoryStub(accounts...),
		InventoryRepo: &InventoryRepositoryStub{Bundle: model.DefaultInventory()},
		LedgerRepo:    &LedgerRepositoryStub{},
	}
}

func (s *StoreStub) Accounts() repository.AccountRepository { return s.AccountRepo }

func (s *StoreStub) Inventory() repository.InventoryRepository { return s.InventoryRepo }

func (s *StoreStub) Ledger() repository.LedgerRepository { return s.LedgerRepo }

// ApplyWithdrawal applies the change to the sub-stubs unless overridden.
func (s *StoreStub) ApplyWithdrawal(ctx context.Context, account *model.Account, inv model.NoteBundle, txn model.Transaction) error {
	if s.ApplyFn != nil {
		return s.ApplyFn(ctx, account, inv, txn)
	}
	if err := s.AccountRepo.Update(ctx, account); err != nil {
		return err
	}
	if err := s.InventoryRepo.Update(ctx, inv); err != nil {
		return err
	}
	return s.LedgerRepo.Append(ctx, txn)
}
