package dto

type ParseRequest struct {
	Text string `json:"text" validate:"required"`
}

type ParsedTransactionResponse struct {
	Type     string  `json:"type"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Note     *string `json:"note,omitempty"`
}

type CreateTransactionRequest struct {
	Type     string  `json:"type" validate:"required,oneof=income expense"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Category string  `json:"category" validate:"required"`
	Note     *string `json:"note,omitempty"`
}

type TransactionResponse struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Amount    float64 `json:"amount"`
	Category  string  `json:"category"`
	Note      *string `json:"note,omitempty"`
	CreatedAt string  `json:"created_at"`
}

type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}
