package attributes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes attribute dictionary management.
type Service interface {
	CreateAttribute(ctx context.Context, name string) (*AttributeDTO, error)
	CreateAttributeValue(ctx context.Context, attributeID uuid.UUID, value string) (*AttributeValueDTO, error)
	ListAttributes(ctx context.Context) ([]AttributeDTO, error)
}

// AttributeDTO is an attribute with its known values.
type AttributeDTO struct {
	ID     uuid.UUID           `json:"id"`
	Name   string              `json:"name"`
	Values []AttributeValueDTO `json:"values"`
}

// AttributeValueDTO is a single attribute value.
type AttributeValueDTO struct {
	ID          uuid.UUID `json:"id"`
	AttributeID uuid.UUID `json:"attribute_id"`
	Value       string    `json:"value"`
}

type service struct {
	db *gorm.DB
}

// NewService constructs an attribute service instance.
func NewService(conn *gorm.DB) (Service, error) {
	if conn == nil {
		return nil, fmt.Errorf("db connection required")
	}
	return &service{db: conn}, nil
}

// CreateAttribute registers a new variant dimension. Names are unique.
func (s *service) CreateAttribute(ctx context.Context, name string) (*AttributeDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	var count int64
	err := s.db.WithContext(ctx).Unscoped().Model(&models.ProductAttribute{}).
		Where("name = ?", name).
		Count(&count).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check attribute name")
	}
	if count > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate attribute name")
	}

	attribute := &models.ProductAttribute{Name: name}
	if err := s.db.WithContext(ctx).Create(attribute).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate attribute name")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create attribute")
	}
	return &AttributeDTO{ID: attribute.ID, Name: attribute.Name, Values: []AttributeValueDTO{}}, nil
}

// CreateAttributeValue adds a value to an attribute. The (attribute, value)
// pair is unique.
func (s *service) CreateAttributeValue(ctx context.Context, attributeID uuid.UUID, value string) (*AttributeValueDTO, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "value is required")
	}

	var attribute models.ProductAttribute
	err := s.db.WithContext(ctx).First(&attribute, "id = ?", attributeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "attribute not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load attribute")
	}

	var count int64
	err = s.db.WithContext(ctx).Unscoped().Model(&models.ProductAttributeValue{}).
		Where("attribute_id = ? AND value = ?", attributeID, value).
		Count(&count).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check attribute value")
	}
	if count > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate attribute value")
	}

	row := &models.ProductAttributeValue{AttributeID: attributeID, Value: value}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate attribute value")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create attribute value")
	}
	return &AttributeValueDTO{ID: row.ID, AttributeID: row.AttributeID, Value: row.Value}, nil
}

// ListAttributes returns every attribute with its values, sorted by name.
func (s *service) ListAttributes(ctx context.Context) ([]AttributeDTO, error) {
	var rows []models.ProductAttribute
	err := s.db.WithContext(ctx).
		Preload("Values", func(db *gorm.DB) *gorm.DB {
			return db.Order("value ASC")
		}).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list attributes")
	}

	result := make([]AttributeDTO, 0, len(rows))
	for _, attribute := range rows {
		dto := AttributeDTO{
			ID:     attribute.ID,
			Name:   attribute.Name,
			Values: make([]AttributeValueDTO, 0, len(attribute.Values)),
		}
		for _, value := range attribute.Values {
			dto.Values = append(dto.Values, AttributeValueDTO{
				ID:          value.ID,
				AttributeID: value.AttributeID,
				Value:       value.Value,
			})
		}
		result = append(result, dto)
	}
	return result, nil
}
