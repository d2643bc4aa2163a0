package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// HoldingRead is a position on a depository account.
type HoldingRead struct {
	SecurityID     int64           `json:"security_id"`
	SecurityName   string          `json:"security_name"`
	Ticker         string          `json:"ticker"`
	ISIN           string          `json:"isin"`
	LotSize        int64           `json:"lot_size"`
	Amount         decimal.Decimal `json:"amount"`
	CurrencyID     int64           `json:"currency_id"`
	CurrencyCode   string          `json:"currency_code"`
	CurrencySymbol string          `json:"currency_symbol"`
}

// HoldingOperationRead is a depository history row.
type HoldingOperationRead struct {
	ID              int64           `json:"id"`
	SecurityID      int64           `json:"security_id"`
	SecurityName    string          `json:"security_name"`
	Amount          decimal.Decimal `json:"amount"`
	OperationTypeID int64           `json:"operation_type_id"`
	OperationType   string          `json:"operation_type"`
	ProposalID      *int64          `json:"proposal_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// DepositoryAccountRead is the depository account with its positions and history.
type DepositoryAccountRead struct {
	ID             int64                  `json:"id"`
	ContractNumber string                 `json:"contract_number"`
	OpenedAt       time.Time              `json:"opened_at"`
	Balances       []HoldingRead          `json:"balances"`
	Operations     []HoldingOperationRead `json:"operations"`
}

// OperationSummary aggregates depository movements per operation type and security.
type OperationSummary struct {
	OperationType   string          `json:"operation_type"`
	SecurityName    string          `json:"security_name"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	OperationsCount int64           `json:"operations_count"`
}

// BalanceChartItem is one slice of the client's depository balance chart.
type BalanceChartItem struct {
	SecurityName string          `json:"security_name"`
	Quantity     decimal.Decimal `json:"quantity"`
}
