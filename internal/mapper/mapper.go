// Package mapper copies fields between the combined customer view and the
// stored entities. Each function overwrites the target's mapped fields and
// returns it; identity and audit fields on entities are left alone.
package mapper

import "github.com/abpira/accounts/shared/models"

func ToCustomer(view models.CustomerView, customer *models.Customer) *models.Customer {
	customer.Name = view.Name
	customer.Email = view.Email
	customer.MobileNumber = view.MobileNumber
	return customer
}

// ToCustomerView does not touch view.Account.
func ToCustomerView(customer *models.Customer, view *models.CustomerView) *models.CustomerView {
	view.Name = customer.Name
	view.Email = customer.Email
	view.MobileNumber = customer.MobileNumber
	return view
}

// ToAccount copies the account number too; callers updating an existing
// account pass a view whose number already matches.
func ToAccount(view *models.AccountView, account *models.Account) *models.Account {
	account.AccountNumber = view.AccountNumber
	account.AccountType = view.AccountType
	account.BranchAddress = view.BranchAddress
	return account
}

func ToAccountView(account *models.Account, view *models.AccountView) *models.AccountView {
	view.AccountNumber = account.AccountNumber
	view.AccountType = account.AccountType
	view.BranchAddress = account.BranchAddress
	return view
}
