package models

import "time"

// Supplier provides ingredients. The (company, phone) pair identifies a supplier.
type Supplier struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Name     string `gorm:"size:100;not null" json:"nombre"`
	LastName string `gorm:"size:100;not null" json:"apellido"`
	Company  string `gorm:"size:150;not null;uniqueIndex:idx_supplier_company_phone" json:"empresa"`
	Phone    string `gorm:"size:30;not null;uniqueIndex:idx_supplier_company_phone" json:"telefono"`
	Schedule string `gorm:"size:255;not null" json:"horarios"`
}

// FullName joins first and last name.
func (s *Supplier) FullName() string {
	switch {
	case s.Name == "":
		return s.LastName
	case s.LastName == "":
		return s.Name
	}
	return s.Name + " " + s.LastName
}
