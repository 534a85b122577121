package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/pasumerce/inventario/internal/models"
	"github.com/pasumerce/inventario/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var phonePattern = regexp.MustCompile(`^[0-9+()\-\s]{7,20}$`)

type SupplierInput struct {
	Name     string `json:"nombre"`
	LastName string `json:"apellido"`
	Company  string `json:"empresa"`
	Phone    string `json:"telefono"`
	Schedule string `json:"horarios"`
}

func (in SupplierInput) validate() error {
	v := validation.Violations{}
	validation.Required("nombre", in.Name, v)
	validation.Required("apellido", in.LastName, v)
	validation.Required("empresa", in.Company, v)
	validation.Required("telefono", in.Phone, v)
	validation.Required("horarios", in.Schedule, v)
	validation.Pattern("telefono", strings.TrimSpace(in.Phone), phonePattern, v)
	validation.MaxLen("nombre", in.Name, 100, v)
	validation.MaxLen("apellido", in.LastName, 100, v)
	validation.MaxLen("empresa", in.Company, 150, v)
	validation.MaxLen("horarios", in.Schedule, 255, v)
	if !v.Empty() {
		return &ValidationError{Violations: v}
	}
	return nil
}

func (in SupplierInput) apply(s *models.Supplier) {
	s.Name = strings.TrimSpace(in.Name)
	s.LastName = strings.TrimSpace(in.LastName)
	s.Company = strings.TrimSpace(in.Company)
	s.Phone = strings.TrimSpace(in.Phone)
	s.Schedule = strings.TrimSpace(in.Schedule)
}

type SupplierService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewSupplierService(db *gorm.DB, log *zap.Logger) *SupplierService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SupplierService{db: db, log: log}
}

func (s *SupplierService) Create(ctx context.Context, in SupplierInput) (*models.Supplier, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var sup models.Supplier
	in.apply(&sup)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUniqueSupplier(tx, sup.Company, sup.Phone, 0); err != nil {
			return err
		}
		return onDuplicate(tx.Create(&sup).Error, supplierExists())
	})
	if err != nil {
		return nil, passthrough("create supplier", err)
	}
	s.log.Info("supplier created", zap.Uint("supplier_id", sup.ID), zap.String("company", sup.Company))
	return &sup, nil
}

func (s *SupplierService) List(ctx context.Context) ([]models.Supplier, error) {
	var out []models.Supplier
	if err := s.db.WithContext(ctx).Order("company asc, id asc").Find(&out).Error; err != nil {
		return nil, internal("list suppliers", err)
	}
	return out, nil
}

func (s *SupplierService) Get(ctx context.Context, id uint) (*models.Supplier, error) {
	return findSupplier(s.db.WithContext(ctx), id)
}

func (s *SupplierService) Update(ctx context.Context, id uint, in SupplierInput) (*models.Supplier, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var sup *models.Supplier
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if sup, err = findSupplier(tx, id); err != nil {
			return err
		}
		in.apply(sup)
		if err := ensureUniqueSupplier(tx, sup.Company, sup.Phone, id); err != nil {
			return err
		}
		return onDuplicate(tx.Save(sup).Error, supplierExists())
	})
	if err != nil {
		return nil, passthrough("update supplier", err)
	}
	return sup, nil
}

// Delete removes a supplier that no ingredient references.
func (s *SupplierService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findSupplier(tx, id); err != nil {
			return err
		}
		var refs int64
		if err := tx.Model(&models.Ingredient{}).Where("supplier_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return &ConflictError{Code: "supplier_in_use", Reason: "supplier is referenced by inventory"}
		}
		return tx.Delete(&models.Supplier{}, id).Error
	})
	if err != nil {
		return passthrough("delete supplier", err)
	}
	s.log.Info("supplier deleted", zap.Uint("supplier_id", id))
	return nil
}

func findSupplier(db *gorm.DB, id uint) (*models.Supplier, error) {
	var sup models.Supplier
	err := db.First(&sup, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "supplier", ID: id}
	}
	if err != nil {
		return nil, internal("find supplier", err)
	}
	return &sup, nil
}

func ensureUniqueSupplier(tx *gorm.DB, company, phone string, exceptID uint) error {
	q := tx.Model(&models.Supplier{}).Where("lower(company) = ? AND phone = ?", strings.ToLower(company), phone)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return supplierExists()
	}
	return nil
}

func supplierExists() *ConflictError {
	return &ConflictError{Code: "supplier_already_exists", Reason: "a supplier with this company and phone already exists"}
}
