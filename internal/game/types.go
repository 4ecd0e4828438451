package game

type PlayersView struct {
	Players  []Player      `json:"players"`
	Currency string        `json:"currency"`
	Settings CurrencyRules `json:"settings"`
}

type CreatePlayerInput struct {
	Name   string
	Avatar string
}

type TransactionInput struct {
	PlayerID      int
	CashAmount    int64
	AccountAmount int64
	Description   string
}

type TransactionResult struct {
	Player      Player      `json:"player"`
	Transaction Transaction `json:"transaction"`
}
