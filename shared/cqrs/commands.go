package cqrs

import "github.com/abpira/accounts/shared/models"

// CreateAccountCommand provisions a customer and its savings account.
// Customer.Account is ignored.
type CreateAccountCommand struct {
	Customer models.CustomerView
}

// UpdateAccountCommand rewrites the mutable fields of a customer and the
// account identified by Customer.Account.AccountNumber.
type UpdateAccountCommand struct {
	Customer models.CustomerView
}

type DeleteAccountCommand struct {
	MobileNumber string
}
