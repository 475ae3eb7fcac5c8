package domain

import "strings"

// Address is a structured postal address, used both for the warehouse
// origin and for order destinations.
type Address struct {
	Name       string
	Phone      string
	Email      string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Validate checks the fields a carrier will reject a booking without.
func (a Address) Validate() error {
	if strings.TrimSpace(a.Name) == "" ||
		strings.TrimSpace(a.Line1) == "" ||
		strings.TrimSpace(a.City) == "" ||
		strings.TrimSpace(a.PostalCode) == "" ||
		strings.TrimSpace(a.Country) == "" {
		return ErrInvalidAddress
	}
	return nil
}
