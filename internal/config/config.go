package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	AccountsFile       string
	InventoryFile      string
	LedgerFile         string
	DatabaseURI        string
	AdminPIN           string
	CashAlertThreshold int64
	CashPollInterval   time.Duration
	ShutdownTimeout    time.Duration
}

const (
	defaultAccountsFile       = "accounts.txt"
	defaultInventoryFile      = "atm.txt"
	defaultLedgerFile         = "transactions.txt"
	defaultAdminPIN           = "999999"
	defaultCashAlertThreshold = 20000
	defaultCashPollInterval   = time.Minute
	defaultShutdownTimeout    = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		AccountsFile:       getString(lookup, "ACCOUNTS_FILE", defaultAccountsFile),
		InventoryFile:      getString(lookup, "INVENTORY_FILE", defaultInventoryFile),
		LedgerFile:         getString(lookup, "LEDGER_FILE", defaultLedgerFile),
		DatabaseURI:        getString(lookup, "DATABASE_URI", ""),
		AdminPIN:           getString(lookup, "ADMIN_PIN", defaultAdminPIN),
		CashAlertThreshold: getInt64(lookup, "CASH_ALERT_THRESHOLD", defaultCashAlertThreshold),
		CashPollInterval:   getDuration(lookup, "CASH_POLL_INTERVAL", defaultCashPollInterval),
		ShutdownTimeout:    getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("atm", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.CashPollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.AccountsFile, "accounts", cfg.AccountsFile, "Accounts store path")
	fs.StringVar(&cfg.InventoryFile, "inventory", cfg.InventoryFile, "Note inventory store path")
	fs.StringVar(&cfg.LedgerFile, "ledger", cfg.LedgerFile, "Transaction ledger path")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN (file stores when empty)")
	fs.StringVar(&cfg.AdminPIN, "admin-pin", cfg.AdminPIN, "PIN for the operator menu")
	fs.Int64Var(&cfg.CashAlertThreshold, "cash-alert", cfg.CashAlertThreshold, "Total cash level that triggers a low-cash warning")
	fs.StringVar(&pollIntervalStr, "cash-poll", pollIntervalStr, "Interval between inventory checks")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.CashPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid cash poll interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if pinFile, ok := lookup("ADMIN_PIN_FILE"); ok && pinFile != "" {
		content, err := os.ReadFile(pinFile)
		if err != nil {
			return nil, fmt.Errorf("read admin pin file: %w", err)
		}
		cfg.AdminPIN = strings.TrimSpace(string(content))
	}

	if cfg.CashAlertThreshold < 0 {
		cfg.CashAlertThreshold = defaultCashAlertThreshold
	}

	if cfg.CashPollInterval <= 0 {
		cfg.CashPollInterval = defaultCashPollInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.AdminPIN == "" {
		return nil, fmt.Errorf("admin PIN must not be empty")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt64(lookup envLookup, key string, def int64) int64 {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
