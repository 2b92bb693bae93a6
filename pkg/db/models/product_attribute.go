package models

import "github.com/google/uuid"

// ProductAttribute names a variant dimension, e.g. "Size" or "Color".
type ProductAttribute struct {
	Base
	Name string `gorm:"column:name;not null;uniqueIndex"`

	Values []ProductAttributeValue `gorm:"foreignKey:AttributeID"`
}

// ProductAttributeValue is one instance of an attribute, e.g. "Large".
type ProductAttributeValue struct {
	Base
	AttributeID uuid.UUID `gorm:"column:attribute_id;type:uuid;not null;uniqueIndex:idx_attribute_value"`
	Value       string    `gorm:"column:value;not null;uniqueIndex:idx_attribute_value"`

	Attribute *ProductAttribute `gorm:"foreignKey:AttributeID"`
}

// VariantAttributeValue links a variant to one attribute value. The set of
// links on a variant describes its purchasable combination (e.g. Red+Large).
type VariantAttributeValue struct {
	Base
	VariantID        uuid.UUID `gorm:"column:variant_id;type:uuid;not null;uniqueIndex:idx_variant_attribute_value"`
	AttributeValueID uuid.UUID `gorm:"column:attribute_value_id;type:uuid;not null;uniqueIndex:idx_variant_attribute_value"`

	AttributeValue *ProductAttributeValue `gorm:"foreignKey:AttributeValueID"`
}
