package domain

import (
	"errors"
	"strings"
)

var (
	ErrEmptyEmail   = errors.New("email is required")
	ErrInvalidEmail = errors.New("email must contain '@'")
	ErrEmptyName    = errors.New("first and last name are required")
)

// Customer is a registered purchaser that orders may reference.
type Customer struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

// NewCustomer builds a customer ensuring required invariants.
func NewCustomer(id int64, email, firstName, lastName, phone string) (*Customer, error) {
	c := &Customer{
		ID:        id,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Phone:     strings.TrimSpace(phone),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the contact fields.
func (c *Customer) Validate() error {
	if c.Email == "" {
		return ErrEmptyEmail
	}
	if !strings.Contains(c.Email, "@") {
		return ErrInvalidEmail
	}
	if c.FirstName == "" || c.LastName == "" {
		return ErrEmptyName
	}
	return nil
}

// FullName joins first and last name.
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
