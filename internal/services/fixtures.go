package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"foodgram/internal/models"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type ingredientFixture struct {
	Name            string `json:"name" validate:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" validate:"required,max=200"`
}

type tagFixture struct {
	Name  string `json:"name" validate:"required,max=200"`
	Color string `json:"color" validate:"required,hexcolor,len=7"`
	Slug  string `json:"slug" validate:"required,max=200"`
}

var fixtureValidate = validator.New(validator.WithRequiredStructEnabled())

// ImportIngredients 导入 [{"name": ..., "measurement_unit": ...}]，已存在的同名同单位食材跳过
func ImportIngredients(ctx context.Context, db *gorm.DB, r io.Reader) (created int, err error) {
	var rows []ingredientFixture
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return 0, fmt.Errorf("decode ingredients: %w", err)
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, row := range rows {
			row.Name = strings.TrimSpace(row.Name)
			row.MeasurementUnit = strings.TrimSpace(row.MeasurementUnit)
			if err := fixtureValidate.Struct(row); err != nil {
				return fmt.Errorf("ingredient #%d: %w", i, err)
			}

			var count int64
			if err := tx.Model(&models.Ingredient{}).
				Where("name = ? AND measurement_unit = ?", row.Name, row.MeasurementUnit).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			if err := tx.Create(&models.Ingredient{Name: row.Name, MeasurementUnit: row.MeasurementUnit}).Error; err != nil {
				return fmt.Errorf("ingredient #%d: %w", i, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// ImportTags 导入 [{"name": ..., "color": "#RRGGBB", "slug": ...}]，slug 已存在的跳过
func ImportTags(ctx context.Context, db *gorm.DB, r io.Reader) (created int, err error) {
	var rows []tagFixture
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return 0, fmt.Errorf("decode tags: %w", err)
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, row := range rows {
			if err := fixtureValidate.Struct(row); err != nil {
				return fmt.Errorf("tag #%d: %w", i, err)
			}

			var count int64
			if err := tx.Model(&models.Tag{}).Where("slug = ?", row.Slug).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			tag := models.Tag{Name: row.Name, Color: strings.ToUpper(row.Color), Slug: row.Slug}
			if err := tx.Create(&tag).Error; err != nil {
				return fmt.Errorf("tag #%d: %w", i, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
