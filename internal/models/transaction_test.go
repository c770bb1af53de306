package models_test

import (
	"time"

	"github.com/gsmtrack/backend/internal/models"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestTransactionDefaults() {
	provider := suite.createTestProvider(models.Provider{})

	tx := models.Transaction{
		ProviderID: provider.ID,
		CardNumber: "  7005830000012345  ",
		Quantity:   decimal.NewFromFloat(42.5),
		FuelType:   "ДТ",
	}
	suite.Require().NoError(models.DB.Create(&tx).Error)

	var loaded models.Transaction
	suite.Require().NoError(models.DB.First(&loaded, tx.ID).Error)

	suite.Assert().Equal("7005830000012345", loaded.CardNumber)
	suite.Assert().Equal("RUB", loaded.Currency)
	suite.Assert().False(loaded.Date.IsZero())
	suite.Assert().Equal(time.UTC, loaded.Date.Location())
	suite.Assert().True(loaded.Quantity.Equal(decimal.NewFromFloat(42.5)))
}

func (suite *TestSuiteStandard) TestTransactionDateUTC() {
	provider := suite.createTestProvider(models.Provider{})

	loc, err := time.LoadLocation("Europe/Moscow")
	suite.Require().NoError(err)

	tx := models.Transaction{
		ProviderID: provider.ID,
		Date:       time.Date(2024, 3, 15, 8, 30, 0, 0, loc),
		Quantity:   decimal.NewFromInt(10),
	}
	suite.Require().NoError(models.DB.Create(&tx).Error)

	var loaded models.Transaction
	suite.Require().NoError(models.DB.First(&loaded, tx.ID).Error)

	suite.Assert().Equal(time.UTC, loaded.Date.Location())
	suite.Assert().Equal(5, loaded.Date.Hour())
}
