package models

// Defaults applied to every newly provisioned account.
const (
	SavingsAccountType   = "Savings"
	DefaultBranchAddress = "123 Main Street, New York"
)

const (
	Status200  = "200"
	Message200 = "Request processed successfully"
	Status201  = "201"
	Message201 = "Account created successfully"
	Status500  = "500"
	Message500 = "An error occurred. Please try again or contact Dev team"
)
