package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/centsible/centsible/internal/database/repository"
)

// DefaultTaxonomy is the seeded two-level category catalog. "Misc >
// Uncategorized" is the one explicit catch-all label; the classifier never
// falls back to it silently.
var DefaultTaxonomy = []string{
	"Income > Salary",
	"Income > Other",
	"Food > Groceries",
	"Food > Restaurants",
	"Food > Coffee & Drinks",
	"Food > Takeaway",
	"Fixed Costs > Rent / Mortgage",
	"Fixed Costs > Utilities",
	"Fixed Costs > Insurance",
	"Fixed Costs > Subscriptions",
	"Fixed Costs > Phone & Internet",
	"Shopping > Clothing",
	"Shopping > Electronics",
	"Shopping > General",
	"Investments & Savings > Savings Transfer",
	"Investments & Savings > Investment Deposit",
	"Misc > Transport",
	"Misc > Health",
	"Misc > Entertainment",
	"Misc > Gifts",
	"Misc > Fees & Charges",
	"Misc > Uncategorized",
}

// SeedDefaults ensures the baseline category catalog exists for new
// databases. It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	catRepo := repository.NewCategoryRepo(db)
	existing, err := catRepo.List(ctx)
	if err == nil && len(existing) > 0 {
		return nil
	}
	for idx, path := range DefaultTaxonomy {
		parts := strings.SplitN(path, ">", 2)
		parent := strings.TrimSpace(parts[0])
		parentID := repository.CategoryID("", parent)
		if err := catRepo.Upsert(ctx, repository.Category{ID: parentID, Name: parent, SortOrder: idx}); err != nil {
			return err
		}
		if len(parts) == 2 {
			sub := strings.TrimSpace(parts[1])
			cat := repository.Category{
				ID:        repository.CategoryID(parent, sub),
				ParentID:  &parentID,
				Name:      sub,
				SortOrder: idx,
			}
			if err := catRepo.Upsert(ctx, cat); err != nil {
				return err
			}
		}
	}
	return nil
}
