// README: Common money value object used across modules.
package types

type Money struct {
	Amount   int64    `json:"amount"`
	Currency Currency `json:"currency"`
}

type Currency string

const UAH Currency = "UAH"

func Hryvnia(amount int64) Money {
	return Money{Amount: amount, Currency: UAH}
}
