package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sale is a deal record as written by the sales entry screens. The commission
// engine only reads it.
type Sale struct {
	ObjectID         primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	SaleID           string             `json:"saleId" bson:"saleId"`
	SaleDate         string             `json:"saleDate" bson:"saleDate"`
	AccountNumber    string             `json:"accountNumber" bson:"accountNumber"`
	StockNumber      string             `json:"stockNumber,omitempty" bson:"stockNumber,omitempty"`
	VIN              string             `json:"vin,omitempty" bson:"vin,omitempty"`
	VINLast4         string             `json:"vinLast4,omitempty" bson:"vinLast4,omitempty"`
	Salesperson      string             `json:"salesperson" bson:"salesperson"`
	SalespersonSplit []SplitEntry       `json:"salespersonSplit,omitempty" bson:"salespersonSplit,omitempty"`
	SaleType         string             `json:"saleType" bson:"saleType"` // "Sale", "Trade-in", "Name Change", "Cash Sale"
	SaleDownPayment  *float64           `json:"saleDownPayment,omitempty" bson:"saleDownPayment,omitempty"`
	DownPayment      *float64           `json:"downPayment,omitempty" bson:"downPayment,omitempty"`
	SalePrice        *float64           `json:"salePrice,omitempty" bson:"salePrice,omitempty"`

	// Vehicle description, display only
	Year    string `json:"year,omitempty" bson:"year,omitempty"`
	Make    string `json:"make,omitempty" bson:"make,omitempty"`
	Model   string `json:"model,omitempty" bson:"model,omitempty"`
	Trim    string `json:"trim,omitempty" bson:"trim,omitempty"`
	Color   string `json:"color,omitempty" bson:"color,omitempty"`
	Mileage string `json:"mileage,omitempty" bson:"mileage,omitempty"`
}

// SplitEntry is one participant of a shared deal. Share is a raw weight; it is
// normalized against the other entries before use.
type SplitEntry struct {
	Name  string  `json:"name" bson:"name"`
	Share float64 `json:"share" bson:"share"`
}

// Vehicle returns the "year make model trim" display line.
func (s Sale) Vehicle() string {
	out := ""
	for _, part := range []string{s.Year, s.Make, s.Model, s.Trim} {
		if part == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += part
	}
	return out
}
