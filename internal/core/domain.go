package core

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type (
	// Transaction is one sale line. An empty ID means it has not been saved yet.
	Transaction struct {
		ID        string          `json:"id,omitempty"`
		Timestamp string          `json:"timestamp,omitempty"`
		Date      string          `json:"date" validate:"required"`
		Product   string          `json:"product" validate:"required,max=120"`
		Qty       int             `json:"qty" validate:"gte=1"`
		Price     decimal.Decimal `json:"price"`
		Total     decimal.Decimal `json:"total"`
		AddedBy   string          `json:"addedBy,omitempty" validate:"max=120"`
	}

	// Product is a catalog entry. CostPrice is absent for legacy rows.
	Product struct {
		ID        int64                     `json:"id"`
		Name      string                    `json:"name" validate:"required,max=120"`
		Price     decimal.Decimal           `json:"price"`
		CostPrice Optional[decimal.Decimal] `json:"costPrice"`
		Stock     int                       `json:"stock" validate:"gte=0"`
		Image     string                    `json:"image" validate:"max=64"`
		Sold      int                       `json:"sold" validate:"gte=0"`
	}

	Profile struct {
		Name     string `json:"name" validate:"required,max=120"`
		Email    string `json:"email" validate:"omitempty,email"`
		PhotoURL string `json:"photourl" validate:"max=2048"`
	}

	// Dashboard is everything a wholesale fetch returns.
	Dashboard struct {
		Transactions []Transaction `json:"transactions"`
		Products     []Product     `json:"products"`
		Profile      Profile       `json:"profile"`
		FetchedAt    time.Time     `json:"fetchedAt"`
	}
)

var (
	ErrEmptyDate     = errors.New("empty date")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyProduct  = errors.New("empty product")
	ErrInvalidQty    = errors.New("quantity must be at least 1")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidStock  = errors.New("stock cannot be negative")
	ErrEmptyName     = errors.New("empty name")
	ErrInvalidEmail  = errors.New("invalid email")
	ErrFieldTooLong  = errors.New("field too long")
	ErrNotFound      = errors.New("not found")
)

// GuestProfile is shown until a profile has been saved.
var GuestProfile = Profile{Name: "Guest", Email: "guest@bakery.com", PhotoURL: "🧁"}

var validate = validator.New()

// Normalize trims the product name and recomputes the total from qty and price.
// Every write path calls it, so stored totals always equal qty × price.
func (t *Transaction) Normalize() {
	t.Product = strings.TrimSpace(t.Product)
	t.Date = strings.TrimSpace(t.Date)
	t.Total = t.Price.Mul(decimal.NewFromInt(int64(t.Qty)))
}

func (t Transaction) Validate() error {
	if err := structError(validate.Struct(t)); err != nil {
		return err
	}
	if strings.TrimSpace(t.Product) == "" {
		return ErrEmptyProduct
	}
	if _, ok := ParseDate(t.Date); !ok {
		return ErrInvalidDate
	}
	if t.Price.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func (p Product) Validate() error {
	if err := structError(validate.Struct(p)); err != nil {
		return err
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.Price.IsNegative() {
		return ErrInvalidAmount
	}
	if c, ok := p.CostPrice.Get(); ok && c.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	return structError(validate.Struct(p))
}

// Margin is the unit profit, treating a missing cost price as zero.
func (p Product) Margin() decimal.Decimal {
	return p.Price.Sub(p.CostPrice.OrElse(decimal.Zero))
}

// structError maps the first validator failure onto a package sentinel so
// callers can use errors.Is.
func structError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch {
	case fe.Tag() == "max":
		return ErrFieldTooLong
	case fe.Field() == "Date":
		return ErrEmptyDate
	case fe.Field() == "Product":
		return ErrEmptyProduct
	case fe.Field() == "Qty":
		return ErrInvalidQty
	case fe.Field() == "Stock", fe.Field() == "Sold":
		return ErrInvalidStock
	case fe.Field() == "Name":
		return ErrEmptyName
	case fe.Field() == "Email":
		return ErrInvalidEmail
	}
	return err
}
