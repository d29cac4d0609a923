package directory

import (
	"context"
	"fmt"

	"sweetshop/internal/models"
)

type fixture struct {
	id    string
	input RegisterInput
	role  models.Role
}

// Fixture accounts present in every directory.
const (
	AdminEmail    = "admin@sweetshop.com"
	AdminPassword = "admin123"
	UserEmail     = "user@sweetshop.com"
	UserPassword  = "user123"
)

var fixtures = []fixture{
	{
		id:    "usr_admin_001",
		input: RegisterInput{DisplayName: "Store Manager", Email: AdminEmail, Password: AdminPassword},
		role:  models.RoleAdmin,
	},
	{
		id:    "usr_customer_001",
		input: RegisterInput{DisplayName: "Jane Customer", Email: UserEmail, Password: UserPassword},
		role:  models.RoleUser,
	},
}

func (d *MemoryDirectory) seed(ctx context.Context) error {
	for _, f := range fixtures {
		d.mu.RLock()
		_, exists := d.byEmail[f.input.Email]
		d.mu.RUnlock()
		if exists {
			continue
		}
		if _, err := d.create(ctx, f.input, f.role, f.id); err != nil {
			return fmt.Errorf("seed %s: %w", f.input.Email, err)
		}
	}
	return nil
}
