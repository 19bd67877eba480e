package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/atm/internal/domain/errors"
	"github.com/polkiloo/atm/internal/domain/model"
	"github.com/polkiloo/atm/internal/domain/repository"
)

// pgxPool is the subset of pgxpool.Pool the storage uses; tests swap in
// a mock through newPgxPool.
type pgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL, for branches
// that point several machines at one shared inventory.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type accountRepository struct {
	storage *Storage
}

type inventoryRepository struct {
	storage *Storage
}

type ledgerRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Storage) Accounts() repository.AccountRepository {
	return &accountRepository{storage: s}
}

func (s *Storage) Inventory() repository.InventoryRepository {
	return &inventoryRepository{storage: s}
}

func (s *Storage) Ledger() repository.LedgerRepository {
	return &ledgerRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
            number BIGINT PRIMARY KEY,
            pin_hash TEXT NOT NULL,
            balance DOUBLE PRECISION NOT NULL DEFAULT 0,
            holder_name TEXT NOT NULL,
            failed_attempts INT NOT NULL DEFAULT 0,
            locked BOOLEAN NOT NULL DEFAULT FALSE
        )`,
		`CREATE TABLE IF NOT EXISTS note_inventory (
            id SMALLINT PRIMARY KEY CHECK (id = 1),
            note2000 INT NOT NULL,
            note500 INT NOT NULL,
            note200 INT NOT NULL,
            note100 INT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS ledger (
            id BIGSERIAL PRIMARY KEY,
            account_number BIGINT NOT NULL,
            kind TEXT NOT NULL,
            amount DOUBLE PRECISION NOT NULL,
            remaining_balance DOUBLE PRECISION NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_account ON ledger(account_number, id)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- AccountRepository implementation ---

func (r *accountRepository) Get(ctx context.Context, number int64) (*model.Account, error) {
	const query = `SELECT number, pin_hash, balance, holder_name, failed_attempts, locked
                   FROM accounts WHERE number=$1`
	var a model.Account
	err := r.storage.pool.QueryRow(ctx, query, number).
		Scan(&a.Number, &a.PINHash, &a.Balance, &a.HolderName, &a.FailedAttempts, &a.Locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	const query = `INSERT INTO accounts (number, pin_hash, balance, holder_name, failed_attempts, locked)
                   VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.storage.pool.Exec(ctx, query,
		account.Number, account.PINHash, account.Balance, account.HolderName, account.FailedAttempts, account.Locked)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *accountRepository) Update(ctx context.Context, account *model.Account) error {
	const query = `UPDATE accounts SET pin_hash=$2, balance=$3, holder_name=$4, failed_attempts=$5, locked=$6
                   WHERE number=$1`
	tag, err := r.storage.pool.Exec(ctx, query,
		account.Number, account.PINHash, account.Balance, account.HolderName, account.FailedAttempts, account.Locked)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *accountRepository) List(ctx context.Context) ([]model.Account, error) {
	const query = `SELECT number, pin_hash, balance, holder_name, failed_attempts, locked
                   FROM accounts ORDER BY number`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.Number, &a.PINHash, &a.Balance, &a.HolderName, &a.FailedAttempts, &a.Locked); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- InventoryRepository implementation ---

func (r *inventoryRepository) Get(ctx context.Context) (model.NoteBundle, error) {
	const query = `SELECT note2000, note500, note200, note100 FROM note_inventory WHERE id=1`
	var inv model.NoteBundle
	err := r.storage.pool.QueryRow(ctx, query).Scan(&inv.Note2000, &inv.Note500, &inv.Note200, &inv.Note100)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.DefaultInventory(), nil
		}
		return model.NoteBundle{}, err
	}
	return inv, nil
}

func (r *inventoryRepository) Update(ctx context.Context, inv model.NoteBundle) error {
	return r.storage.upsertInventory(ctx, r.storage.pool, inv)
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func (s *Storage) upsertInventory(ctx context.Context, db execer, inv model.NoteBundle) error {
	const query = `INSERT INTO note_inventory (id, note2000, note500, note200, note100)
                   VALUES (1, $1, $2, $3, $4)
                   ON CONFLICT (id) DO UPDATE
                   SET note2000=EXCLUDED.note2000, note500=EXCLUDED.note500,
                       note200=EXCLUDED.note200, note100=EXCLUDED.note100`
	_, err := db.Exec(ctx, query, inv.Note2000, inv.Note500, inv.Note200, inv.Note100)
	return err
}

// --- LedgerRepository implementation ---

func (r *ledgerRepository) Append(ctx context.Context, txn model.Transaction) error {
	return r.storage.appendLedger(ctx, r.storage.pool, txn)
}

func (s *Storage) appendLedger(ctx context.Context, db execer, txn model.Transaction) error {
	const query = `INSERT INTO ledger (account_number, kind, amount, remaining_balance, created_at)
                   VALUES ($1, $2, $3, $4, $5)`
	_, err := db.Exec(ctx, query,
		txn.AccountNumber, string(txn.Kind), txn.Amount, txn.RemainingBalance, txn.CreatedAt)
	return err
}

func (r *ledgerRepository) ListByAccount(ctx context.Context, number int64) ([]model.Transaction, error) {
	const query = `SELECT account_number, kind, amount, remaining_balance, created_at
                   FROM ledger WHERE account_number=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, number)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		var kind string
		if err := rows.Scan(&txn.AccountNumber, &kind, &txn.Amount, &txn.RemainingBalance, &txn.CreatedAt); err != nil {
			return nil, err
		}
		txn.Kind = model.TransactionKind(kind)
		result = append(result, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyWithdrawal commits the debited account, reduced inventory and
// ledger record in a single database transaction.
func (s *Storage) ApplyWithdrawal(ctx context.Context, account *model.Account, inv model.NoteBundle, txn model.Transaction) error {
	return s.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const updateAccount = `UPDATE accounts SET balance=$2, failed_attempts=$3, locked=$4 WHERE number=$1`
		tag, err := tx.Exec(ctx, updateAccount, account.Number, account.Balance, account.FailedAttempts, account.Locked)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrNotFound
		}
		if err := s.upsertInventory(ctx, tx, inv); err != nil {
			return err
		}
		return s.appendLedger(ctx, tx, txn)
	})
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
