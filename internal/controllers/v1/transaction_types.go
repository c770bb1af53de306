package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gsmtrack/backend/internal/models"
	ez_uuid "github.com/gsmtrack/backend/internal/uuid"
	"github.com/shopspring/decimal"
)

type TransactionLinks struct {
	Self     string `json:"self" example:"https://example.com/api/v1/transactions/d430d7c3-d14c-4a1e-932b-9f938a443413"`     // The transaction itself
	Provider string `json:"provider" example:"https://example.com/api/v1/providers/65392deb-5e92-4268-b114-297faad6cdce"`    // The provider the transaction was imported from
	Template string `json:"template,omitempty" example:"https://example.com/api/v1/templates/6b8d4f91-e4c1-4a46-a8cf-0b73"` // The template the transaction was loaded with, if any
	Vehicle  string `json:"vehicle,omitempty" example:"https://example.com/api/v1/vehicles/7e575fc4-354d-4787-a6d6-60dde"`  // The vehicle the fuel card belongs to, if any
}

// Transaction is the API representation of an imported fueling operation.
// Transactions are created by the load endpoints and by file imports, never
// directly via the API, so there is no editable type.
type Transaction struct {
	models.DefaultModel
	ProviderID uuid.UUID  `json:"provider_id" example:"65392deb-5e92-4268-b114-297faad6cdce"`
	TemplateID *uuid.UUID `json:"template_id" example:"6b8d4f91-e4c1-4a46-a8cf-0b73c6b6b9c6"`
	VehicleID  *uuid.UUID `json:"vehicle_id" example:"7e575fc4-354d-4787-a6d6-60dde2b68bd6"`

	Date         time.Time `json:"date" example:"2024-03-17T08:31:00Z"`
	CardNumber   string    `json:"card_number" example:"7005830900000001"`
	CardHolder   string    `json:"card_holder" example:"Иванов И.И."`
	Station      string    `json:"station" example:"АЗС №12"`
	Organization string    `json:"organization" example:"ООО Транс"`

	Quantity decimal.Decimal `json:"quantity" example:"45.5"`
	Amount   decimal.Decimal `json:"amount" example:"2520.70"`
	Currency string          `json:"currency" example:"RUB"`

	FuelType string `json:"fuel_type" example:"ДТ"`

	Links TransactionLinks `json:"links"`
}

func newTransaction(c *gin.Context, model models.Transaction) Transaction {
	url := c.GetString(string(models.DBContextURL))

	transaction := Transaction{
		DefaultModel: model.DefaultModel,
		ProviderID:   model.ProviderID,
		TemplateID:   model.TemplateID,
		VehicleID:    model.VehicleID,
		Date:         model.Date,
		CardNumber:   model.CardNumber,
		CardHolder:   model.CardHolder,
		Station:      model.Station,
		Organization: model.Organization,
		Quantity:     model.Quantity,
		Amount:       model.Amount,
		Currency:     model.Currency,
		FuelType:     model.FuelType,
		Links: TransactionLinks{
			Self:     fmt.Sprintf("%s/v1/transactions/%s", url, model.ID),
			Provider: fmt.Sprintf("%s/v1/providers/%s", url, model.ProviderID),
		},
	}

	if model.TemplateID != nil {
		transaction.Links.Template = fmt.Sprintf("%s/v1/templates/%s", url, *model.TemplateID)
	}
	if model.VehicleID != nil {
		transaction.Links.Vehicle = fmt.Sprintf("%s/v1/vehicles/%s", url, *model.VehicleID)
	}

	return transaction
}

type TransactionListResponse struct {
	Data       []Transaction `json:"data"`                                                          // List of transactions
	Error      *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination   `json:"pagination"`                                                    // Pagination information
}

type TransactionResponse struct {
	Data  *Transaction `json:"data"`                                                          // Data for the transaction
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type TransactionQueryFilter struct {
	ProviderID ez_uuid.UUID `form:"provider"`                       // By ID of the provider
	TemplateID ez_uuid.UUID `form:"template"`                       // By ID of the template
	VehicleID  ez_uuid.UUID `form:"vehicle"`                        // By ID of the vehicle
	CardNumber string       `form:"card_number"`                    // By fuel card number
	FuelType   string       `form:"fuel_type"`                      // By normalized fuel label
	DateFrom   string       `form:"date_from" filterField:"false"`  // Only transactions on or after this date
	DateTo     string       `form:"date_to" filterField:"false"`    // Only transactions on or before this date
	Offset     uint         `form:"offset" filterField:"false"`     // The offset of the first transaction returned. Defaults to 0.
	Limit      int          `form:"limit" filterField:"false"`      // Maximum number of transactions to return. Defaults to 50.
}

func (f TransactionQueryFilter) model() models.Transaction {
	transaction := models.Transaction{
		ProviderID: f.ProviderID.UUID,
		CardNumber: f.CardNumber,
		FuelType:   f.FuelType,
	}

	if f.TemplateID.UUID != uuid.Nil {
		id := f.TemplateID.UUID
		transaction.TemplateID = &id
	}

	if f.VehicleID.UUID != uuid.Nil {
		id := f.VehicleID.UUID
		transaction.VehicleID = &id
	}

	return transaction
}
