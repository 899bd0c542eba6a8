package dto

import "github.com/shopspring/decimal"

// DailySummaryResponse aggregates one day of collections.
type DailySummaryResponse struct {
	Date             string                     `json:"date"`
	Total            decimal.Decimal            `json:"total"`
	TransactionCount int64                      `json:"transaction_count"`
	ClientCount      int64                      `json:"client_count"`
	ByMethod         map[string]decimal.Decimal `json:"by_method"`
}

// DebtorItem is one row of the top-debtors report.
type DebtorItem struct {
	ClientID       string          `json:"client_id"`
	ContractNumber string          `json:"contract_number"`
	Name           string          `json:"name"`
	MonthsOwed     int             `json:"months_owed"`
	MoraAmount     decimal.Decimal `json:"mora_amount"`
	Status         string          `json:"status"`
}
