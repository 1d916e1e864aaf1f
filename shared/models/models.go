package models

import "time"

// Audit carries the bookkeeping columns stamped by the store on insert and
// update. Service code never reads or writes these fields.
type Audit struct {
	CreatedAt time.Time  `json:"-"`
	CreatedBy string     `json:"-"`
	UpdatedAt *time.Time `json:"-"`
	UpdatedBy string     `json:"-"`
}

type Customer struct {
	CustomerID   int64
	Name         string
	Email        string
	MobileNumber string
	Audit
}

type Account struct {
	AccountNumber int64
	CustomerID    int64
	AccountType   string
	BranchAddress string
	Audit
}

// StatusResponse is the body returned by successful write endpoints.
type StatusResponse struct {
	StatusCode string `json:"statusCode"`
	StatusMsg  string `json:"statusMsg"`
}

type ErrorResponse struct {
	APIPath      string    `json:"apiPath"`
	ErrorCode    string    `json:"errorCode"`
	ErrorMessage string    `json:"errorMessage"`
	ErrorTime    time.Time `json:"errorTime"`
}
