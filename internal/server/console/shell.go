package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	domainErrors "github.com/polkiloo/atm/internal/domain/errors"
	"github.com/polkiloo/atm/internal/domain/model"
)

// Facade exposes the engine operations the shell drives.
type Facade interface {
	Authenticate(ctx context.Context, number int64, pinSupplier func(attemptsLeft int) (string, bool)) (*model.Session, error)
	InquireBalance(ctx context.Context, session *model.Session) (float64, error)
	Withdraw(ctx context.Context, session *model.Session, amount int64, confirm func(model.NoteBundle) bool) (*model.Receipt, error)
	History(ctx context.Context, number int64) ([]model.Transaction, error)
	InventoryStatus(ctx context.Context) (model.NoteBundle, error)
	Refill(ctx context.Context, add model.NoteBundle) (model.NoteBundle, error)
	UnlockAccount(ctx context.Context, number int64) error
	ListAccounts(ctx context.Context) ([]model.Account, error)
}

// Shell is the interactive menu layer. It parses lines, retries invalid
// input and renders results; every rule that matters lives behind the
// facade.
type Shell struct {
	facade   Facade
	adminPIN string
	in       *bufio.Scanner
	out      io.Writer
	logger   *slog.Logger
}

// New constructs a shell reading from in and writing to out.
func New(facade Facade, adminPIN string, in io.Reader, out io.Writer, logger *slog.Logger) *Shell {
	return &Shell{
		facade:   facade,
		adminPIN: adminPIN,
		in:       bufio.NewScanner(in),
		out:      out,
		logger:   logger,
	}
}

// Run drives the main menu until the operator exits or input ends.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Welcome to the ATM Withdrawal System")
	for {
		s.line()
		fmt.Fprintln(s.out, "Main Menu:\n1. User Login\n2. Admin Menu\n3. Exit")
		choice, err := s.promptInt("Enter choice: ")
		if err != nil {
			return nil
		}

		switch choice {
		case 1:
			if err := s.login(ctx); err != nil {
				return nil
			}
		case 2:
			if err := s.adminMenu(ctx); err != nil {
				return nil
			}
		case 3:
			fmt.Fprintln(s.out, "Exiting system. Goodbye!")
			return nil
		default:
			fmt.Fprintln(s.out, "Invalid choice.")
		}
	}
}

// login runs authentication and, on success, the session menu. The
// returned error is only non-nil when input has ended.
func (s *Shell) login(ctx context.Context) error {
	s.line()
	number, err := s.promptInt("Enter Account Number: ")
	if err != nil {
		return err
	}

	var inputDone bool
	session, authErr := s.facade.Authenticate(ctx, number, func(attemptsLeft int) (string, bool) {
		pin, err := s.promptLine("Enter PIN: ")
		if err != nil {
			inputDone = true
			return "", false
		}
		return pin, true
	})
	if inputDone {
		return io.EOF
	}

	switch {
	case authErr == nil:
		fmt.Fprintf(s.out, "Login successful. Welcome, %s!\n", session.HolderName)
		return s.sessionMenu(ctx, session)
	case errors.Is(authErr, domainErrors.ErrNotFound):
		fmt.Fprintln(s.out, "Account not found.")
	case errors.Is(authErr, domainErrors.ErrAccountLocked):
		fmt.Fprintln(s.out, "Account is locked due to multiple failed login attempts. Contact admin.")
	case errors.Is(authErr, domainErrors.ErrCancelled):
	default:
		fmt.Fprintln(s.out, "Login failed.")
		s.logger.Error("login failed", slog.String("error", authErr.Error()))
	}
	return nil
}

func (s *Shell) sessionMenu(ctx context.Context, session *model.Session) error {
	for {
		s.line()
		fmt.Fprintln(s.out, "1. Balance Inquiry\n2. Cash Withdrawal\n3. Transaction History\n4. Logout")
		choice, err := s.promptInt("Enter choice: ")
		if err != nil {
			return err
		}

		switch choice {
		case 1:
			s.showBalance(ctx, session)
		case 2:
			if err := s.withdraw(ctx, session); err != nil {
				return err
			}
		case 3:
			s.showHistory(ctx, session.AccountNumber)
		case 4:
			fmt.Fprintln(s.out, "Logging out...")
			return nil
		default:
			fmt.Fprintln(s.out, "Invalid choice.")
		}
	}
}

func (s *Shell) showBalance(ctx context.Context, session *model.Session) {
	balance, err := s.facade.InquireBalance(ctx, session)
	if err != nil {
		fmt.Fprintln(s.out, "Unable to read balance.")
		s.logger.Error("balance inquiry failed", slog.String("error", err.Error()))
		return
	}
	s.line()
	fmt.Fprintf(s.out, "Account: %d | Name: %s\n", session.AccountNumber, session.HolderName)
	fmt.Fprintf(s.out, "Available Balance: %.2f\n", balance)
	s.line()
}

func (s *Shell) withdraw(ctx context.Context, session *model.Session) error {
	amount, err := s.promptInt("Enter amount to withdraw (multiples of 100): ")
	if err != nil {
		return err
	}

	var inputDone bool
	receipt, wErr := s.facade.Withdraw(ctx, session, amount, func(notes model.NoteBundle) bool {
		s.line()
		fmt.Fprintln(s.out, "Dispensing:")
		s.printNotes(notes)
		s.line()
		confirm, err := s.promptInt("Confirm withdrawal? (1=Yes, 0=No): ")
		if err != nil {
			inputDone = true
			return false
		}
		return confirm == 1
	})
	if inputDone {
		return io.EOF
	}

	switch {
	case wErr == nil:
		fmt.Fprintf(s.out, "Transaction successful. New balance: %.2f\n", receipt.Balance)
	case errors.Is(wErr, domainErrors.ErrInvalidAmount):
		fmt.Fprintln(s.out, "Amount must be a positive multiple of 100.")
	case errors.Is(wErr, domainErrors.ErrInsufficientFunds):
		fmt.Fprintln(s.out, "Insufficient balance.")
	case errors.Is(wErr, domainErrors.ErrInsufficientCash):
		fmt.Fprintln(s.out, "ATM does not have enough cash.")
	case errors.Is(wErr, domainErrors.ErrNoteMixUnavailable):
		fmt.Fprintln(s.out, "ATM cannot dispense the requested amount with available denominations.")
	case errors.Is(wErr, domainErrors.ErrCancelled):
		fmt.Fprintln(s.out, "Withdrawal cancelled.")
	default:
		fmt.Fprintln(s.out, "Withdrawal failed.")
		s.logger.Error("withdrawal failed", slog.String("error", wErr.Error()))
	}
	return nil
}

func (s *Shell) showHistory(ctx context.Context, number int64) {
	records, err := s.facade.History(ctx, number)
	if err != nil {
		fmt.Fprintln(s.out, "No transaction history found.")
		return
	}

	s.line()
	fmt.Fprintf(s.out, "Transaction History for Account %d\n", number)
	s.line()
	if len(records) == 0 {
		fmt.Fprintln(s.out, "No transactions found for this account.")
	}
	for _, txn := range records {
		fmt.Fprintf(s.out, "[%s] %s : %.2f | Balance: %.2f\n",
			txn.CreatedAt.Format(model.TimestampLayout), txn.Kind, txn.Amount, txn.RemainingBalance)
	}
	s.line()
}

func (s *Shell) adminMenu(ctx context.Context) error {
	pin, err := s.promptLine("Enter admin PIN: ")
	if err != nil {
		return err
	}
	if pin != s.adminPIN {
		fmt.Fprintln(s.out, "Invalid admin PIN.")
		return nil
	}

	for {
		s.line()
		fmt.Fprintln(s.out, "Admin Menu:\n1. View ATM inventory\n2. Refill ATM notes\n3. View all accounts\n4. Unlock account\n5. Exit admin")
		choice, err := s.promptInt("Enter choice: ")
		if err != nil {
			return err
		}

		switch choice {
		case 1:
			s.showInventory(ctx)
		case 2:
			if err := s.refill(ctx); err != nil {
				return err
			}
		case 3:
			s.listAccounts(ctx)
		case 4:
			number, err := s.promptInt("Enter account number to unlock: ")
			if err != nil {
				return err
			}
			switch uErr := s.facade.UnlockAccount(ctx, number); {
			case uErr == nil:
				fmt.Fprintf(s.out, "Account %d unlocked.\n", number)
			case errors.Is(uErr, domainErrors.ErrNotFound):
				fmt.Fprintln(s.out, "Account not found.")
			default:
				fmt.Fprintln(s.out, "Unlock failed.")
				s.logger.Error("unlock failed", slog.String("error", uErr.Error()))
			}
		case 5:
			fmt.Fprintln(s.out, "Exiting admin menu.")
			return nil
		default:
			fmt.Fprintln(s.out, "Invalid choice.")
		}
	}
}

func (s *Shell) showInventory(ctx context.Context) {
	inv, err := s.facade.InventoryStatus(ctx)
	if err != nil {
		fmt.Fprintln(s.out, "Unable to read inventory.")
		return
	}
	s.line()
	fmt.Fprintln(s.out, "ATM Inventory:")
	s.printNotes(inv)
	fmt.Fprintf(s.out, "Total cash: %d\n", inv.Total())
	s.line()
}

func (s *Shell) refill(ctx context.Context) error {
	var add model.NoteBundle
	prompts := []struct {
		label string
		count *int
	}{
		{"2000", &add.Note2000},
		{"500", &add.Note500},
		{"200", &add.Note200},
		{"100", &add.Note100},
	}
	for _, p := range prompts {
		n, err := s.promptInt(fmt.Sprintf("Enter additional %s notes to add: ", p.label))
		if err != nil {
			return err
		}
		*p.count = int(n)
	}

	switch inv, rErr := s.facade.Refill(ctx, add); {
	case rErr == nil:
		fmt.Fprintln(s.out, "ATM refilled successfully.")
		s.printNotes(inv)
	case errors.Is(rErr, domainErrors.ErrInvalidAmount):
		fmt.Fprintln(s.out, "Invalid (negative) input. Operation cancelled.")
	default:
		fmt.Fprintln(s.out, "Refill failed.")
		s.logger.Error("refill failed", slog.String("error", rErr.Error()))
	}
	return nil
}

func (s *Shell) listAccounts(ctx context.Context) {
	accounts, err := s.facade.ListAccounts(ctx)
	if err != nil {
		fmt.Fprintln(s.out, "Unable to list accounts.")
		return
	}
	s.line()
	fmt.Fprintln(s.out, "Accounts List:")
	for _, a := range accounts {
		locked := "No"
		if a.Locked {
			locked = "Yes"
		}
		fmt.Fprintf(s.out, "Acc: %d | Name: %s | Bal: %.2f | Locked: %s\n",
			a.Number, a.HolderName, a.Balance, locked)
	}
	s.line()
}

func (s *Shell) printNotes(b model.NoteBundle) {
	if b.Note2000 > 0 {
		fmt.Fprintf(s.out, "2000 x %d\n", b.Note2000)
	}
	if b.Note500 > 0 {
		fmt.Fprintf(s.out, "500  x %d\n", b.Note500)
	}
	if b.Note200 > 0 {
		fmt.Fprintf(s.out, "200  x %d\n", b.Note200)
	}
	if b.Note100 > 0 {
		fmt.Fprintf(s.out, "100  x %d\n", b.Note100)
	}
}

func (s *Shell) line() {
	fmt.Fprintln(s.out, strings.Repeat("-", 50))
}

// promptLine reads one non-empty line, retrying on empty input. Returns
// io.EOF once input ends.
func (s *Shell) promptLine(prompt string) (string, error) {
	for {
		fmt.Fprint(s.out, prompt)
		if !s.in.Scan() {
			return "", io.EOF
		}
		text := strings.TrimSpace(s.in.Text())
		if text == "" {
			fmt.Fprintln(s.out, "Empty input. Try again.")
			continue
		}
		return text, nil
	}
}

// promptInt reads one integer, retrying on anything else.
func (s *Shell) promptInt(prompt string) (int64, error) {
	for {
		text, err := s.promptLine(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			fmt.Fprintln(s.out, "Invalid integer. Try again.")
			continue
		}
		return n, nil
	}
}
