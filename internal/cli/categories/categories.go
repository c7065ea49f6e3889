package categories

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/tmeadows/sitebudget/internal/cli"
	"github.com/tmeadows/sitebudget/internal/models"
)

type CategoryAddCmd struct {
	Name           string `arg:"" help:"Category name."`
	SuggestedLimit int    `short:"s" help:"Suggested time limit in minutes." required:""`
}

func (c *CategoryAddCmd) Run(ctx *cli.Context) error {
	category := models.Category{
		ID:                    uuid.New().String(),
		Name:                  c.Name,
		SuggestedLimitMinutes: c.SuggestedLimit,
	}
	if err := category.Validate(); err != nil {
		return fmt.Errorf("invalid category: %w", err)
	}
	if err := ctx.Store.AddCategory(category); err != nil {
		return err
	}

	fmt.Printf("Added category: %s (ID: %s)\n", c.Name, category.ID)
	return nil
}

type CategoryListCmd struct{}

func (c *CategoryListCmd) Run(ctx *cli.Context) error {
	categories, err := ctx.Store.GetAllCategories()
	if err != nil {
		return fmt.Errorf("failed to get categories: %w", err)
	}
	if len(categories) == 0 {
		fmt.Println("No categories found")
		return nil
	}

	fmt.Println("Categories:")
	for _, category := range categories {
		if category.SuggestedLimitMinutes > 0 {
			fmt.Printf("  %s - suggested %dm\n", category.Name, category.SuggestedLimitMinutes)
		} else {
			fmt.Printf("  %s\n", category.Name)
		}
	}
	return nil
}

type CategoryDeleteCmd struct {
	Name string `arg:"" help:"Name (or ID) of the category to delete."`
}

func (c *CategoryDeleteCmd) Run(ctx *cli.Context) error {
	categories, err := ctx.Store.GetAllCategories()
	if err != nil {
		return err
	}

	id := ""
	for _, category := range categories {
		if category.Name == c.Name || category.ID == c.Name {
			id = category.ID
			break
		}
	}
	if id == "" {
		return fmt.Errorf("category %q not found", c.Name)
	}

	if err := ctx.Store.DeleteCategory(id); err != nil {
		return err
	}
	fmt.Printf("Deleted category: %s\n", c.Name)
	return nil
}
