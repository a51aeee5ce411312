package domain

// Characteristic type tags as they appear in tender payloads.
const (
	CharacteristicQuantitative = "Количественная"
	CharacteristicQualitative  = "Качественная"
)

// Characteristic is a single attribute requirement attached to a tender item.
// Value holds either an exact value or an inequality/range expression
// ("≥ 50", "> 10 и ≤ 20").
type Characteristic struct {
	ID       int    `json:"id,omitempty"`
	Name     string `json:"name"`
	Value    string `json:"value"`
	Unit     string `json:"unit,omitempty"`
	Type     string `json:"type,omitempty"`
	Required bool   `json:"required"`
}

// Money is a price as provided by the tender platform.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
}

// TenderItem is one line item of a procurement tender.
type TenderItem struct {
	ID                int              `json:"id"`
	Name              string           `json:"name"`
	OKPD2Code         string           `json:"okpd2Code"`
	KTRUCode          string           `json:"ktruCode,omitempty"`
	Quantity          float64          `json:"quantity"`
	UnitOfMeasurement string           `json:"unitOfMeasurement,omitempty"`
	UnitPrice         Money            `json:"unitPrice"`
	TotalPrice        Money            `json:"totalPrice,omitempty"`
	Characteristics   []Characteristic `json:"characteristics,omitempty"`
}

// TenderInfo identifies the tender being processed.
type TenderInfo struct {
	TenderName   string `json:"tenderName,omitempty"`
	TenderNumber string `json:"tenderNumber,omitempty"`
	CustomerName string `json:"customerName,omitempty"`
}

// TenderRequest is the full matching request: tender descriptor plus the
// ordered list of items to match.
type TenderRequest struct {
	TenderInfo TenderInfo   `json:"tenderInfo"`
	Items      []TenderItem `json:"items"`
}
