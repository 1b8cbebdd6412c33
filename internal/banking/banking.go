// Package banking keeps linked bank accounts and their synced transactions.
//
// Accounts are materialized on first reference. When demo seeding is on, a
// default account exists from the first listing and every account receives
// a fixed set of sample transactions on its first sync, never twice.
package banking

import (
	"sync"
	"time"

	"github.com/wondertwin-ai/backoffice/pkg/store"
)

// DefaultAccountID is the id of the demo account created by ListAccounts.
const DefaultAccountID = "default"

// Account statuses.
const (
	StatusActive = "active"
	StatusLinked = "linked"
)

// Account is a bank account known to the backoffice.
type Account struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	IBAN         string     `json:"iban,omitempty"`
	Currency     string     `json:"currency"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`
}

// Transaction is a booked transaction on an account. Amounts are in cents.
type Transaction struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"accountId"`
	AmountCents  int64     `json:"amountCents"`
	Currency     string    `json:"currency"`
	Description  string    `json:"description"`
	Counterparty string    `json:"counterparty,omitempty"`
	BookedAt     time.Time `json:"bookedAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Config configures the service.
type Config struct {
	// DemoSeed enables the default account and sample transactions.
	DemoSeed bool
}

type sample struct {
	amount       int64
	description  string
	counterparty string
	age          time.Duration
}

var samples = []sample{
	{125000, "Betaling factuur 2024-001", "Jansen B.V.", 72 * time.Hour},
	{-85000, "Huur kantoorruimte", "Vastgoed Utrecht", 48 * time.Hour},
	{-1250, "Bankkosten", "", 24 * time.Hour},
}

// Service owns accounts and transactions.
type Service struct {
	// mu serializes the check-then-create sequences in ensureAccount and
	// SyncTransactions.
	mu           sync.Mutex
	accounts     *store.Store[Account]
	transactions *store.Store[Transaction]
	clock        *store.Clock
	cfg          Config
}

// New creates a banking service.
func New(cfg Config, clock *store.Clock) *Service {
	return &Service{
		accounts:     store.New[Account]("acct"),
		transactions: store.New[Transaction]("txn"),
		clock:        clock,
		cfg:          cfg,
	}
}

// ListAccounts returns all accounts, oldest first, creating the default
// demo account first when seeding is enabled.
func (s *Service) ListAccounts() []Account {
	s.mu.Lock()
	s.ensureDefaultAccount()
	s.mu.Unlock()
	return s.accounts.List()
}

// SyncTransactions links accountID if it is unknown, seeds its sample
// transactions if it has none yet, and returns its transactions. With demo
// seeding on, the default account is created first.
func (s *Service) SyncTransactions(accountID string) []Transaction {
	s.mu.Lock()
	s.ensureDefaultAccount()
	s.ensureAccount(accountID, "Linked Account", "", StatusLinked)
	now := s.clock.Now()
	if s.cfg.DemoSeed && !s.transactions.Any(func(t Transaction) bool { return t.AccountID == accountID }) {
		for _, smp := range samples {
			s.transactions.Create(func(id string) Transaction {
				return Transaction{
					ID:           id,
					AccountID:    accountID,
					AmountCents:  smp.amount,
					Currency:     "EUR",
					Description:  smp.description,
					Counterparty: smp.counterparty,
					BookedAt:     now.Add(-smp.age).Truncate(time.Second),
					CreatedAt:    now,
				}
			})
		}
	}
	s.accounts.Update(accountID, func(a Account) Account {
		a.LastSyncedAt = &now
		return a
	})
	s.mu.Unlock()

	return s.ListTransactions(accountID)
}

// ListTransactions returns the transactions of accountID, oldest first. An
// empty accountID returns every transaction.
func (s *Service) ListTransactions(accountID string) []Transaction {
	if accountID == "" {
		return s.transactions.List()
	}
	return s.transactions.Filter(func(t Transaction) bool { return t.AccountID == accountID })
}

// ensureDefaultAccount must be called with s.mu held.
func (s *Service) ensureDefaultAccount() {
	if s.cfg.DemoSeed {
		s.ensureAccount(DefaultAccountID, "Zakelijke rekening", "NL91DEMO0417164300", StatusActive)
	}
}

// ensureAccount must be called with s.mu held.
func (s *Service) ensureAccount(id, name, iban, status string) {
	if _, ok := s.accounts.Get(id); ok {
		return
	}
	s.accounts.Set(id, Account{
		ID:        id,
		Name:      name,
		IBAN:      iban,
		Currency:  "EUR",
		Status:    status,
		CreatedAt: s.clock.Now(),
	})
}

// State is the serializable banking state.
type State struct {
	Accounts     []Account     `json:"accounts"`
	Transactions []Transaction `json:"transactions"`
}

// Snapshot returns accounts and transactions in insertion order.
func (s *Service) Snapshot() State {
	return State{Accounts: s.accounts.List(), Transactions: s.transactions.List()}
}

// Load replaces all accounts and transactions.
func (s *Service) Load(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accounts := make([]store.Entry[Account], 0, len(st.Accounts))
	for _, a := range st.Accounts {
		accounts = append(accounts, store.Entry[Account]{ID: a.ID, Item: a})
	}
	txns := make([]store.Entry[Transaction], 0, len(st.Transactions))
	for _, t := range st.Transactions {
		txns = append(txns, store.Entry[Transaction]{ID: t.ID, Item: t})
	}
	s.accounts.Load(accounts)
	s.transactions.Load(txns)
}

// Reset removes every account and transaction.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts.Reset()
	s.transactions.Reset()
}
