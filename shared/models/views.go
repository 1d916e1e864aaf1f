package models

// CustomerView is the combined customer+account projection exchanged with API
// clients and stored in the Redis read model. Account stays nil when the
// client did not send one.
type CustomerView struct {
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	MobileNumber string       `json:"mobileNumber"`
	Account      *AccountView `json:"accountsDTO,omitempty"`
}

// AccountView is the account half of CustomerView.
type AccountView struct {
	AccountNumber int64  `json:"accountNumber"`
	AccountType   string `json:"accountType"`
	BranchAddress string `json:"branchAddress"`
}
