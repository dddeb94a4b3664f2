package events

// Topic constants for domain events emitted by registers.
const (
	TopicSaleCompleted = "sale.completed"
)

// SaleCompleted is the payload of TopicSaleCompleted.
type SaleCompleted struct {
	SaleID     string `json:"saleId"`
	RegisterID string `json:"registerId"`
	Total      string `json:"total"`
	Discount   string `json:"discount"`
	VAT        string `json:"vat"`
	Items      int    `json:"items"`
}
