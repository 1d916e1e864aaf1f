package cqrs

// FetchAccountQuery fetches the combined customer+account view for a mobile number.
type FetchAccountQuery struct {
	MobileNumber string
}
