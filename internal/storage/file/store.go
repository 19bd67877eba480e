package file

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/atm/internal/domain/errors"
	"github.com/polkiloo/atm/internal/domain/model"
	"github.com/polkiloo/atm/internal/domain/repository"
)

// Store is the flat-file backend. Accounts and inventory are held in
// memory and flushed with an atomic tmp+rename write; the in-memory
// state is only swapped once the rename succeeds, so a failed flush
// leaves the last committed state intact. The ledger file is append-only
// and never held in memory.
//
// File formats:
//
//	accounts:  number pinHash balance name failedAttempts locked
//	inventory: note2000 note500 note200 note100
//	ledger:    number;kind;amount;balance;YYYY-MM-DD HH:MM:SS
type Store struct {
	accountsPath  string
	inventoryPath string
	ledgerPath    string
	logger        *slog.Logger

	mu       sync.RWMutex
	accounts map[int64]*model.Account
	order    []int64
	inv      model.NoteBundle
}

type accountRepository struct {
	store *Store
}

type inventoryRepository struct {
	store *Store
}

type ledgerRepository struct {
	store *Store
}

// New loads both stores. A missing accounts file yields an empty
// directory; a missing or malformed inventory file yields the default
// stock. Neither is an error.
func New(accountsPath, inventoryPath, ledgerPath string, logger *slog.Logger) (*Store, error) {
	s := &Store{
		accountsPath:  accountsPath,
		inventoryPath: inventoryPath,
		ledgerPath:    ledgerPath,
		logger:        logger,
		accounts:      make(map[int64]*model.Account),
	}

	if err := s.loadAccounts(); err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	s.loadInventory()
	return s, nil
}

func (s *Store) Accounts() repository.AccountRepository {
	return &accountRepository{store: s}
}

func (s *Store) Inventory() repository.InventoryRepository {
	return &inventoryRepository{store: s}
}

func (s *Store) Ledger() repository.LedgerRepository {
	return &ledgerRepository{store: s}
}

// ApplyWithdrawal flushes the debited account, then the reduced
// inventory. The two files cannot be replaced as one unit, so a failure
// between them leaves the account debit durable and is surfaced to the
// caller. A ledger append failure is logged and swallowed; the
// withdrawal itself stands.
func (s *Store) ApplyWithdrawal(ctx context.Context, account *model.Account, inv model.NoteBundle, txn model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commitAccount(account); err != nil {
		return err
	}
	if err := s.commitInventory(inv); err != nil {
		return err
	}
	if err := s.appendLedger(txn); err != nil {
		s.logger.Warn("transaction not logged",
			slog.Int64("account", txn.AccountNumber),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// --- accounts ---

func (r *accountRepository) Get(ctx context.Context, number int64) (*model.Account, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[number]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return account.Clone(), nil
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.Number]; exists {
		return domainErrors.ErrAlreadyExists
	}

	s.accounts[account.Number] = account.Clone()
	s.order = append(s.order, account.Number)
	if err := s.saveAccounts(); err != nil {
		delete(s.accounts, account.Number)
		s.order = s.order[:len(s.order)-1]
		return err
	}
	return nil
}

func (r *accountRepository) Update(ctx context.Context, account *model.Account) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitAccount(account)
}

func (r *accountRepository) List(ctx context.Context) ([]model.Account, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Account, 0, len(s.order))
	for _, number := range s.order {
		result = append(result, *s.accounts[number])
	}
	return result, nil
}

// commitAccount swaps in the new record, flushes, and restores the prior
// record if the flush fails. Caller holds the write lock.
func (s *Store) commitAccount(account *model.Account) error {
	prev, ok := s.accounts[account.Number]
	if !ok {
		return domainErrors.ErrNotFound
	}

	s.accounts[account.Number] = account.Clone()
	if err := s.saveAccounts(); err != nil {
		s.accounts[account.Number] = prev
		return err
	}
	return nil
}

func (s *Store) loadAccounts() error {
	f, err := os.Open(s.accountsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		account, ok := parseAccountLine(scanner.Text())
		if !ok {
			s.logger.Warn("skipping malformed account record", slog.String("line", scanner.Text()))
			continue
		}
		if _, exists := s.accounts[account.Number]; exists {
			continue
		}
		s.accounts[account.Number] = account
		s.order = append(s.order, account.Number)
	}
	return scanner.Err()
}

func (s *Store) saveAccounts() error {
	return writeFileAtomic(s.accountsPath, func(w io.Writer) error {
		for _, number := range s.order {
			a := s.accounts[number]
			locked := 0
			if a.Locked {
				locked = 1
			}
			_, err := fmt.Fprintf(w, "%d %s %.2f %s %d %d\n",
				a.Number, a.PINHash, a.Balance, a.HolderName, a.FailedAttempts, locked)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func parseAccountLine(line string) (*model.Account, bool) {
	fields := strings.Fields(line)
	if len(fields) != 6 {
		return nil, false
	}

	number, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return nil, false
	}
	balance, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return nil, false
	}
	attempts, err := strconv.Atoi(fields[4])
	if err != nil {
		return nil, false
	}
	locked, err := strconv.Atoi(fields[5])
	if err != nil {
		return nil, false
	}

	return &model.Account{
		Number:         number,
		PINHash:        fields[1],
		Balance:        balance,
		HolderName:     fields[3],
		FailedAttempts: attempts,
		Locked:         locked != 0,
	}, true
}

// --- inventory ---

func (r *inventoryRepository) Get(ctx context.Context) (model.NoteBundle, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inv, nil
}

func (r *inventoryRepository) Update(ctx context.Context, inv model.NoteBundle) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitInventory(inv)
}

func (s *Store) commitInventory(inv model.NoteBundle) error {
	err := writeFileAtomic(s.inventoryPath, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%d %d %d %d\n", inv.Note2000, inv.Note500, inv.Note200, inv.Note100)
		return err
	})
	if err != nil {
		return err
	}
	s.inv = inv
	return nil
}

func (s *Store) loadInventory() {
	s.inv = model.DefaultInventory()

	data, err := os.ReadFile(s.inventoryPath)
	if err != nil {
		return
	}

	fields := strings.Fields(string(data))
	if len(fields) != 4 {
		s.logger.Warn("inventory file malformed, using defaults")
		return
	}

	counts := make([]int, 4)
	for i, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil || n < 0 {
			s.logger.Warn("inventory file malformed, using defaults")
			return
		}
		counts[i] = n
	}

	s.inv = model.NoteBundle{Note2000: counts[0], Note500: counts[1], Note200: counts[2], Note100: counts[3]}
}

// --- ledger ---

func (r *ledgerRepository) Append(ctx context.Context, txn model.Transaction) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLedger(txn)
}

func (r *ledgerRepository) ListByAccount(ctx context.Context, number int64) ([]model.Transaction, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Transaction
	s.scanLedger()(func(txn model.Transaction) bool {
		if txn.AccountNumber == number {
			result = append(result, txn)
		}
		return true
	})
	return result, nil
}

func (s *Store) appendLedger(txn model.Transaction) error {
	f, err := os.OpenFile(s.ledgerPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(f, "%d;%s;%.2f;%.2f;%s\n",
		txn.AccountNumber, txn.Kind, txn.Amount, txn.RemainingBalance,
		txn.CreatedAt.Format(model.TimestampLayout))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// scanLedger yields parsed records in file order, skipping lines that do
// not parse. Each call reopens the file, so the sequence is restartable.
func (s *Store) scanLedger() func(yield func(model.Transaction) bool) {
	return func(yield func(model.Transaction) bool) {
		f, err := os.Open(s.ledgerPath)
		if err != nil {
			return
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			txn, ok := parseLedgerLine(scanner.Text())
			if !ok {
				continue
			}
			if !yield(txn) {
				return
			}
		}
	}
}

func parseLedgerLine(line string) (model.Transaction, bool) {
	parts := strings.SplitN(strings.TrimRight(line, "\n"), ";", 5)
	if len(parts) != 5 {
		return model.Transaction{}, false
	}

	number, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return model.Transaction{}, false
	}
	amount, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return model.Transaction{}, false
	}
	balance, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return model.Transaction{}, false
	}
	created, err := time.Parse(model.TimestampLayout, parts[4])
	if err != nil {
		return model.Transaction{}, false
	}

	return model.Transaction{
		AccountNumber:    number,
		Kind:             model.TransactionKind(parts[1]),
		Amount:           amount,
		RemainingBalance: balance,
		CreatedAt:        created,
	}, true
}

// writeFileAtomic writes into path+".tmp" and renames over the target,
// so a crash mid-write cannot corrupt the store.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
