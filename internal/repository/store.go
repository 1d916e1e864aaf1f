package repository

import (
	"context"
	"errors"

	"github.com/abpira/accounts/shared/models"
)

var (
	// ErrNotFound reports that no row matched the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey reports a primary or unique key collision on insert.
	ErrDuplicateKey = errors.New("duplicate key")
)

// Store is the persistence boundary used by the account service. Lookups
// return ErrNotFound when nothing matches.
type Store interface {
	FindCustomerByMobileNumber(ctx context.Context, mobileNumber string) (*models.Customer, error)
	FindCustomerByID(ctx context.Context, customerID int64) (*models.Customer, error)
	// SaveCustomer inserts a customer with a zero CustomerID, assigning its ID,
	// and updates it otherwise.
	SaveCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	DeleteCustomerByID(ctx context.Context, customerID int64) error

	FindAccountByID(ctx context.Context, accountNumber int64) (*models.Account, error)
	FindAccountByCustomerID(ctx context.Context, customerID int64) (*models.Account, error)
	// SaveAccount updates the account with the same number, inserting it when
	// none exists yet.
	SaveAccount(ctx context.Context, account *models.Account) (*models.Account, error)
	DeleteAccountsByCustomerID(ctx context.Context, customerID int64) error

	// WithinTx runs fn against a Store whose writes commit together, or not
	// at all when fn returns an error.
	WithinTx(ctx context.Context, fn func(Store) error) error
}
