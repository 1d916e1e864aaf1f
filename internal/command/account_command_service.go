package command

import (
	"context"
	"errors"
	"log"

	"github.com/abpira/accounts/internal/mapper"
	"github.com/abpira/accounts/internal/repository"
	"github.com/abpira/accounts/shared/cqrs"
	"github.com/abpira/accounts/shared/errs"
	"github.com/abpira/accounts/shared/events"
	"github.com/abpira/accounts/shared/models"
	"github.com/abpira/accounts/shared/utils"
)

// maxAccountNumberAttempts bounds how often a taken account number is regenerated.
const maxAccountNumberAttempts = 5

// ErrAccountNumbersExhausted is returned when every generated account number
// was already in use.
var ErrAccountNumbersExhausted = errors.New("failed to generate an unused account number")

// CustomerViewInvalidator drops read-model entries made stale by a write.
type CustomerViewInvalidator interface {
	InvalidateCustomerView(ctx context.Context, mobileNumbers ...string)
}

type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// AccountCommandService owns every write to customers and accounts. Each
// operation runs in a single store transaction; the read model is invalidated
// and an event published only after the transaction succeeds.
type AccountCommandService struct {
	store            repository.Store
	views            CustomerViewInvalidator
	publisher        EventPublisher
	newAccountNumber func() int64
}

func NewAccountCommandService(
	store repository.Store,
	views CustomerViewInvalidator,
	publisher EventPublisher,
) *AccountCommandService {
	return &AccountCommandService{
		store:            store,
		views:            views,
		publisher:        publisher,
		newAccountNumber: utils.GenerateAccountNumber,
	}
}

// CreateAccount registers the customer and provisions its savings account.
// Any account sub-view on the command is ignored.
func (s *AccountCommandService) CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) error {
	customer := mapper.ToCustomer(cmd.Customer, &models.Customer{})
	var account *models.Account

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		existing, err := tx.FindCustomerByMobileNumber(ctx, customer.MobileNumber)
		if err == nil {
			return &errs.DuplicateCustomerError{MobileNumber: existing.MobileNumber}
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if customer, err = tx.SaveCustomer(ctx, customer); err != nil {
			return err
		}

		accountNumber, err := s.nextAccountNumber(ctx, tx)
		if err != nil {
			return err
		}
		account, err = tx.SaveAccount(ctx, &models.Account{
			AccountNumber: accountNumber,
			CustomerID:    customer.CustomerID,
			AccountType:   models.SavingsAccountType,
			BranchAddress: models.DefaultBranchAddress,
		})
		return err
	})
	if err != nil {
		return err
	}

	// A view cached for a previous holder of this number is now wrong.
	s.views.InvalidateCustomerView(ctx, customer.MobileNumber)
	s.publish(ctx, events.AccountCreated, events.AccountCreatedEvent{
		CustomerID: customer.CustomerID,
		Customer:   combinedView(customer, account),
	})
	return nil
}

// nextAccountNumber draws account numbers until one is not yet in use.
func (s *AccountCommandService) nextAccountNumber(ctx context.Context, tx repository.Store) (int64, error) {
	for attempt := 0; attempt < maxAccountNumberAttempts; attempt++ {
		candidate := s.newAccountNumber()
		_, err := tx.FindAccountByID(ctx, candidate)
		if errors.Is(err, repository.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return 0, err
		}
		log.Printf("Account number %d already in use, regenerating", candidate)
	}
	return 0, ErrAccountNumbersExhausted
}

// UpdateAccount overwrites the account's type and branch and the customer's
// name, email and mobile number. It reports false without touching the store
// when the command carries no account sub-view.
func (s *AccountCommandService) UpdateAccount(ctx context.Context, cmd cqrs.UpdateAccountCommand) (bool, error) {
	accountView := cmd.Customer.Account
	if accountView == nil {
		return false, nil
	}

	var (
		customer       *models.Customer
		account        *models.Account
		previousMobile string
	)
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		account, err = tx.FindAccountByID(ctx, accountView.AccountNumber)
		if errors.Is(err, repository.ErrNotFound) {
			return errs.NewNotFound("Accounts", "AccountNumber", accountView.AccountNumber)
		}
		if err != nil {
			return err
		}
		if account, err = tx.SaveAccount(ctx, mapper.ToAccount(accountView, account)); err != nil {
			return err
		}

		customer, err = tx.FindCustomerByID(ctx, account.CustomerID)
		if errors.Is(err, repository.ErrNotFound) {
			return errs.NewNotFound("Customer", "CustomerID", account.CustomerID)
		}
		if err != nil {
			return err
		}
		previousMobile = customer.MobileNumber
		customer, err = tx.SaveCustomer(ctx, mapper.ToCustomer(cmd.Customer, customer))
		return err
	})
	if err != nil {
		return false, err
	}

	s.views.InvalidateCustomerView(ctx, previousMobile, customer.MobileNumber)
	s.publish(ctx, events.AccountUpdated, events.AccountUpdatedEvent{
		CustomerID:           customer.CustomerID,
		PreviousMobileNumber: previousMobile,
		Customer:             combinedView(customer, account),
	})
	return true, nil
}

// DeleteAccount removes the customer's accounts and then the customer.
func (s *AccountCommandService) DeleteAccount(ctx context.Context, cmd cqrs.DeleteAccountCommand) (bool, error) {
	var customer *models.Customer
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		customer, err = tx.FindCustomerByMobileNumber(ctx, cmd.MobileNumber)
		if errors.Is(err, repository.ErrNotFound) {
			return errs.NewNotFound("Customer", "mobileNumber", cmd.MobileNumber)
		}
		if err != nil {
			return err
		}
		if err := tx.DeleteAccountsByCustomerID(ctx, customer.CustomerID); err != nil {
			return err
		}
		return tx.DeleteCustomerByID(ctx, customer.CustomerID)
	})
	if err != nil {
		return false, err
	}

	s.views.InvalidateCustomerView(ctx, customer.MobileNumber)
	s.publish(ctx, events.AccountDeleted, events.AccountDeletedEvent{
		CustomerID:   customer.CustomerID,
		MobileNumber: customer.MobileNumber,
	})
	return true, nil
}

// publish logs rather than returns failures: the write has already committed.
func (s *AccountCommandService) publish(ctx context.Context, eventType string, data any) {
	if err := s.publisher.Publish(ctx, events.AccountEventsStream, eventType, data); err != nil {
		log.Printf("Failed to publish %s event: %v", eventType, err)
	}
}

func combinedView(customer *models.Customer, account *models.Account) models.CustomerView {
	view := mapper.ToCustomerView(customer, &models.CustomerView{})
	view.Account = mapper.ToAccountView(account, &models.AccountView{})
	return *view
}
