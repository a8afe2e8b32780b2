package model

import "time"

// BaseCurrency is the monetary unit of every aggregate and output.
const BaseCurrency = "KZT"

// Direction of a transfer relative to the client.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// ClientProfile holds the static profile of one client for a scoring pass.
type ClientProfile struct {
	ClientCode        int
	Name              string
	Status            string // Студент / Зарплатный клиент / Премиальный клиент / Стандартный клиент
	Age               int
	City              string
	AvgMonthlyBalance float64 // KZT
}

// Transaction is a single card spend record.
type Transaction struct {
	ClientCode int
	Name       string
	Product    string // product the spend was made with, may be empty
	Status     string
	City       string
	Date       time.Time
	Category   string
	Amount     float64
	Currency   string
}

// Transfer is a single money movement in or out of the client's accounts.
type Transfer struct {
	ClientCode int
	Name       string
	Product    string
	Status     string
	City       string
	Date       time.Time
	Type       string
	Direction  Direction
	Amount     float64
	Currency   string
}

// ClientRecord is everything the scoring engine needs for one client.
// Transactions and Transfers are ordered by date ascending.
type ClientRecord struct {
	Profile      ClientProfile
	Transactions []Transaction
	Transfers    []Transfer
}
