package ledger

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"sweetshop/internal/models"
)

const (
	maxNameLen        = 100
	maxDescriptionLen = 500
)

func validateSpec(spec models.ItemSpec) (models.ItemSpec, error) {
	name, err := validateName(spec.Name)
	if err != nil {
		return spec, err
	}
	spec.Name = name
	if err := validateCategory(spec.Category); err != nil {
		return spec, err
	}
	if err := validatePrice(spec.Price); err != nil {
		return spec, err
	}
	if err := validateQuantity(spec.Quantity); err != nil {
		return spec, err
	}
	if err := validateDescription(spec.Description); err != nil {
		return spec, err
	}
	return spec, nil
}

// applyPatch runs every provided field through its validator before any of
// them is applied, so a rejected patch changes nothing.
func applyPatch(item models.Item, patch models.ItemPatch) (models.Item, error) {
	var name string
	if patch.Name != nil {
		n, err := validateName(*patch.Name)
		if err != nil {
			return item, err
		}
		name = n
	}
	if patch.Category != nil {
		if err := validateCategory(*patch.Category); err != nil {
			return item, err
		}
	}
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return item, err
		}
	}
	if patch.Quantity != nil {
		if err := validateQuantity(*patch.Quantity); err != nil {
			return item, err
		}
	}
	if err := validateDescription(patch.Description); err != nil {
		return item, err
	}

	if patch.Name != nil {
		item.Name = name
	}
	if patch.Category != nil {
		item.Category = *patch.Category
	}
	if patch.Price != nil {
		item.Price = *patch.Price
	}
	if patch.Quantity != nil {
		item.Quantity = *patch.Quantity
	}
	if patch.Description != nil {
		item.Description = cloneString(patch.Description)
	}
	if patch.ImageRef != nil {
		item.ImageRef = cloneString(patch.ImageRef)
	}
	return item, nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", models.NewValidationError("name", "Name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", models.NewValidationError("name", "Name is too long")
	}
	return name, nil
}

func validateCategory(c models.Category) error {
	if c == "" {
		return models.NewValidationError("category", "Category is required")
	}
	if !c.Valid() {
		return models.NewValidationError("category", "Unknown category "+string(c))
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return models.NewValidationError("price", "Price must be positive")
	}
	return nil
}

func validateQuantity(qty int) error {
	if qty < 0 {
		return models.NewValidationError("quantity", "Quantity cannot be negative")
	}
	return nil
}

func validateDescription(desc *string) error {
	if desc != nil && utf8.RuneCountInString(*desc) > maxDescriptionLen {
		return models.NewValidationError("description", "Description is too long")
	}
	return nil
}
