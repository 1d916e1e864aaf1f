// Package repositorytest provides an in-memory repository.Store for tests.
package repositorytest

import (
	"context"
	"sync"

	"github.com/abpira/accounts/internal/repository"
	"github.com/abpira/accounts/shared/models"
)

// MemoryStore keeps customers and accounts in maps and records every call by
// method name. WithinTx does not roll back: earlier writes survive a failing
// later step.
type MemoryStore struct {
	mu        sync.Mutex
	nextID    int64
	customers map[int64]models.Customer
	accounts  map[int64]models.Account
	calls     []string

	// Fail, when set, is consulted before every call; a non-nil result is
	// returned instead of running the call.
	Fail func(method string) error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		customers: make(map[int64]models.Customer),
		accounts:  make(map[int64]models.Account),
	}
}

var _ repository.Store = (*MemoryStore)(nil)

func (m *MemoryStore) enter(method string) error {
	m.calls = append(m.calls, method)
	if m.Fail != nil {
		return m.Fail(method)
	}
	return nil
}

// Calls returns the method names invoked so far, in order.
func (m *MemoryStore) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Writes counts the calls that may have modified state.
func (m *MemoryStore) Writes() int {
	n := 0
	for _, c := range m.Calls() {
		switch c {
		case "SaveCustomer", "SaveAccount", "DeleteCustomerByID", "DeleteAccountsByCustomerID":
			n++
		}
	}
	return n
}

// Customers returns a snapshot of stored customers.
func (m *MemoryStore) Customers() []models.Customer {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		out = append(out, c)
	}
	return out
}

// Accounts returns a snapshot of stored accounts.
func (m *MemoryStore) Accounts() []models.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a)
	}
	return out
}

// PutAccount seeds an account directly, bypassing call recording.
func (m *MemoryStore) PutAccount(a models.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.AccountNumber] = a
}

func (m *MemoryStore) FindCustomerByMobileNumber(ctx context.Context, mobileNumber string) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("FindCustomerByMobileNumber"); err != nil {
		return nil, err
	}
	var found *models.Customer
	for _, c := range m.customers {
		if c.MobileNumber == mobileNumber && (found == nil || c.CustomerID < found.CustomerID) {
			c := c
			found = &c
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (m *MemoryStore) FindCustomerByID(ctx context.Context, customerID int64) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("FindCustomerByID"); err != nil {
		return nil, err
	}
	c, ok := m.customers[customerID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (m *MemoryStore) SaveCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("SaveCustomer"); err != nil {
		return nil, err
	}
	if customer.CustomerID == 0 {
		m.nextID++
		customer.CustomerID = m.nextID
	} else if _, ok := m.customers[customer.CustomerID]; !ok {
		return nil, repository.ErrNotFound
	}
	m.customers[customer.CustomerID] = *customer
	return customer, nil
}

func (m *MemoryStore) DeleteCustomerByID(ctx context.Context, customerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteCustomerByID"); err != nil {
		return err
	}
	if _, ok := m.customers[customerID]; !ok {
		return repository.ErrNotFound
	}
	delete(m.customers, customerID)
	return nil
}

func (m *MemoryStore) FindAccountByID(ctx context.Context, accountNumber int64) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("FindAccountByID"); err != nil {
		return nil, err
	}
	a, ok := m.accounts[accountNumber]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (m *MemoryStore) FindAccountByCustomerID(ctx context.Context, customerID int64) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("FindAccountByCustomerID"); err != nil {
		return nil, err
	}
	var found *models.Account
	for _, a := range m.accounts {
		if a.CustomerID == customerID && (found == nil || a.AccountNumber < found.AccountNumber) {
			a := a
			found = &a
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (m *MemoryStore) SaveAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("SaveAccount"); err != nil {
		return nil, err
	}
	m.accounts[account.AccountNumber] = *account
	return account, nil
}

func (m *MemoryStore) DeleteAccountsByCustomerID(ctx context.Context, customerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteAccountsByCustomerID"); err != nil {
		return err
	}
	for n, a := range m.accounts {
		if a.CustomerID == customerID {
			delete(m.accounts, n)
		}
	}
	return nil
}

func (m *MemoryStore) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(m)
}
