package service

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/spendwise/internal/logging"
	"fjacquet/spendwise/internal/models"
	"fjacquet/spendwise/internal/parsererror"
	"fjacquet/spendwise/internal/validation"
)

// CategoryInput creates a category. Color defaults to models.DefaultCategoryColor.
type CategoryInput struct {
	Name     string
	Color    string
	ParentID *string
}

// CategoryPatch updates the non-nil fields. A ParentID pointing at an empty
// string detaches the category from its parent.
type CategoryPatch struct {
	Name     *string
	Color    *string
	ParentID *string
}

// CategoryList is the flat list of a user's categories plus the tree view.
type CategoryList struct {
	Categories []models.Category     `json:"categories"`
	Tree       []models.CategoryNode `json:"tree"`
}

// CategoryService manages the category tree.
type CategoryService struct {
	store  CategoryStore
	logger logging.Logger
}

// NewCategoryService creates a CategoryService.
func NewCategoryService(store CategoryStore, logger logging.Logger) *CategoryService {
	return &CategoryService{store: store, logger: logger}
}

func (s *CategoryService) Create(ctx context.Context, userID string, in CategoryInput) (models.Category, error) {
	c := models.Category{
		UserID: userID,
		Name:   strings.TrimSpace(in.Name),
		Color:  strings.TrimSpace(in.Color),
	}
	if c.Color == "" {
		c.Color = models.DefaultCategoryColor
	}
	if err := validateCategory(c); err != nil {
		return models.Category{}, err
	}

	if in.ParentID != nil && *in.ParentID != "" {
		if _, err := s.store.GetCategory(ctx, userID, *in.ParentID); err != nil {
			return models.Category{}, fmt.Errorf("parent category %s: %w", *in.ParentID, err)
		}
		parent := *in.ParentID
		c.ParentID = &parent
	}

	if err := s.store.CreateCategory(ctx, &c); err != nil {
		return models.Category{}, err
	}
	s.logger.Info("Category created",
		logging.F(logging.FieldUserID, userID),
		logging.F(logging.FieldCategoryID, c.ID))
	return c, nil
}

func (s *CategoryService) Get(ctx context.Context, userID, id string) (models.Category, error) {
	return s.store.GetCategory(ctx, userID, id)
}

// List returns the flat list ordered by name and the tree of root
// categories with their children.
func (s *CategoryService) List(ctx context.Context, userID string) (CategoryList, error) {
	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return CategoryList{}, err
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return CategoryList{Categories: categories, Tree: models.BuildCategoryTree(categories)}, nil
}

func (s *CategoryService) Update(ctx context.Context, userID, id string, p CategoryPatch) (models.Category, error) {
	c, err := s.store.GetCategory(ctx, userID, id)
	if err != nil {
		return models.Category{}, err
	}
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Color != nil {
		c.Color = strings.TrimSpace(*p.Color)
	}
	if p.ParentID != nil {
		switch parent := *p.ParentID; {
		case parent == "":
			c.ParentID = nil
		case parent == id:
			return models.Category{}, &parsererror.ValidationError{Field: "parentId", Reason: "cannot set category as its own parent"}
		default:
			if _, err := s.store.GetCategory(ctx, userID, parent); err != nil {
				return models.Category{}, fmt.Errorf("parent category %s: %w", parent, err)
			}
			c.ParentID = &parent
		}
	}
	if err := validateCategory(c); err != nil {
		return models.Category{}, err
	}

	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return models.Category{}, err
	}
	return c, nil
}

// Delete removes a category, its subcategories and their rules.
// Transactions that used them become uncategorized.
func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteCategory(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete category %s: %w", id, err)
	}
	s.logger.Info("Category deleted",
		logging.F(logging.FieldUserID, userID),
		logging.F(logging.FieldCategoryID, id))
	return nil
}

func validateCategory(c models.Category) error {
	if err := validation.RequireText("name", c.Name); err != nil {
		return err
	}
	return validation.IsValidColor(c.Color)
}
