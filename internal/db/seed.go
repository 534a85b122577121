package db

import (
	"errors"
	"time"

	"github.com/pasumerce/inventario/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Seed inserts demo data into an empty database: one supplier, flour and salt,
// and the "Pan" product. It does nothing when any supplier already exists.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Supplier{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		sup := models.Supplier{
			Name:     "María",
			LastName: "Gutiérrez",
			Company:  "Molinos del Valle",
			Phone:    "+57 601 555 0101",
			Schedule: "Lunes a sábado 6:00-14:00",
		}
		if err := tx.Create(&sup).Error; err != nil {
			return err
		}

		today := models.CalendarDate(time.Now().UTC())
		flour := models.Ingredient{
			Name:            "Harina de trigo",
			QuantityOnHand:  decimal.NewFromInt(25000),
			UnitValue:       decimal.RequireFromString("0.01"),
			AcquisitionDate: today,
			ExpirationDate:  today.AddDate(0, 6, 0),
			SupplierID:      sup.ID,
		}
		salt := models.Ingredient{
			Name:            "Sal",
			QuantityOnHand:  decimal.NewFromInt(2000),
			UnitValue:       decimal.RequireFromString("0.05"),
			AcquisitionDate: today,
			ExpirationDate:  today.AddDate(2, 0, 0),
			SupplierID:      sup.ID,
		}
		for _, ing := range []*models.Ingredient{&flour, &salt} {
			if err := tx.Create(ing).Error; err != nil {
				return err
			}
		}

		pan := models.Product{
			Name: "Pan",
			Lines: []models.BOMLine{
				{IngredientID: flour.ID, QuantityPerUnit: decimal.NewFromInt(200), UnitPrice: flour.UnitValue},
				{IngredientID: salt.ID, QuantityPerUnit: decimal.NewFromInt(5), UnitPrice: salt.UnitValue},
			},
		}
		pan.TotalPrice = pan.DerivedTotal()
		if err := tx.Create(&pan).Error; err != nil {
			return err
		}
		if pan.ID == 0 {
			return errors.New("seed: product not stored")
		}
		return nil
	})
}
