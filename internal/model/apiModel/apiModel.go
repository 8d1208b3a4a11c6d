package apiModel

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wire shapes of the tracker backend. The backend owns this contract, the
// client only consumes it.

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName,omitempty"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName,omitempty"`
}

type Portfolio struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
}

type Security struct {
	ID           int64            `json:"id"`
	Symbol       string           `json:"symbol"`
	Name         string           `json:"name"`
	CurrentPrice *decimal.Decimal `json:"currentPrice,omitempty"`
}

type Holding struct {
	ID          int64            `json:"id"`
	PortfolioID int64            `json:"portfolioId"`
	SecurityID  int64            `json:"securityId"`
	TotalShares decimal.Decimal  `json:"totalShares"`
	AverageCost *decimal.Decimal `json:"averageCost,omitempty"`
	Security    Security         `json:"security"`
}

type HoldingRequest struct {
	PortfolioID int64            `json:"portfolioId"`
	SecurityID  int64            `json:"securityId"`
	TotalShares decimal.Decimal  `json:"totalShares"`
	AverageCost *decimal.Decimal `json:"averageCost,omitempty"`
}

type Transaction struct {
	ID          int64           `json:"id"`
	PortfolioID int64           `json:"portfolioId"`
	SecurityID  int64           `json:"securityId"`
	Type        string          `json:"type"`
	Shares      decimal.Decimal `json:"shares"`
	Price       decimal.Decimal `json:"price"`
	ExecutedAt  time.Time       `json:"executedAt"`
}

type TransactionRequest struct {
	PortfolioID int64           `json:"portfolioId"`
	SecurityID  int64           `json:"securityId"`
	Type        string          `json:"type"`
	Shares      decimal.Decimal `json:"shares"`
	Price       decimal.Decimal `json:"price"`
	ExecutedAt  time.Time       `json:"executedAt"`
}

// ErrorResponse is the backend's error envelope.
type ErrorResponse struct {
	Message string `json:"message"`
}
