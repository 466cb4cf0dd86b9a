package service

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/spendwise/internal/categorizer"
	"fjacquet/spendwise/internal/logging"
	"fjacquet/spendwise/internal/models"
	"fjacquet/spendwise/internal/parsererror"
	"fjacquet/spendwise/internal/validation"

	"github.com/shopspring/decimal"
)

// RuleInput creates a rule. Priority defaults to models.DefaultRulePriority
// and IsActive to true.
type RuleInput struct {
	CategoryID   string
	Name         string
	MatchField   string
	MatchPattern string
	MinAmount    *decimal.Decimal
	MaxAmount    *decimal.Decimal
	Priority     *int
	IsActive     *bool
}

// RulePatch updates the non-nil fields of a rule.
type RulePatch struct {
	CategoryID   *string
	Name         *string
	MatchField   *string
	MatchPattern *string
	MinAmount    *decimal.Decimal
	MaxAmount    *decimal.Decimal
	Priority     *int
	IsActive     *bool
}

// Preview is the outcome of evaluating a subject against the active rules.
type Preview struct {
	Matched bool                       `json:"matched"`
	Rule    *models.CategorizationRule `json:"rule,omitempty"`
}

// RuleService manages categorization rules.
type RuleService struct {
	store  RuleStore
	logger logging.Logger
}

// NewRuleService creates a RuleService.
func NewRuleService(store RuleStore, logger logging.Logger) *RuleService {
	return &RuleService{store: store, logger: logger}
}

func (s *RuleService) Create(ctx context.Context, userID string, in RuleInput) (models.CategorizationRule, error) {
	field, err := models.ParseMatchField(in.MatchField)
	if err != nil {
		return models.CategorizationRule{}, &parsererror.ValidationError{Field: "matchField", Reason: err.Error()}
	}
	r := models.CategorizationRule{
		UserID:       userID,
		CategoryID:   strings.TrimSpace(in.CategoryID),
		Name:         strings.TrimSpace(in.Name),
		MatchField:   field,
		MatchPattern: strings.TrimSpace(in.MatchPattern),
		MinAmount:    in.MinAmount,
		MaxAmount:    in.MaxAmount,
		Priority:     models.DefaultRulePriority,
		IsActive:     true,
	}
	if in.Priority != nil {
		r.Priority = *in.Priority
	}
	if in.IsActive != nil {
		r.IsActive = *in.IsActive
	}
	if err := s.validate(ctx, r); err != nil {
		return models.CategorizationRule{}, err
	}

	if err := s.store.CreateRule(ctx, &r); err != nil {
		return models.CategorizationRule{}, err
	}
	s.logger.Info("Rule created",
		logging.F(logging.FieldUserID, userID),
		logging.F(logging.FieldRuleID, r.ID),
		logging.F(logging.FieldCategoryID, r.CategoryID))
	return r, nil
}

func (s *RuleService) Get(ctx context.Context, userID, id string) (models.CategorizationRule, error) {
	return s.store.GetRule(ctx, userID, id)
}

// List returns the user's rules in evaluation order.
func (s *RuleService) List(ctx context.Context, userID string) ([]models.CategorizationRule, error) {
	return s.store.ListRules(ctx, userID)
}

func (s *RuleService) Update(ctx context.Context, userID, id string, p RulePatch) (models.CategorizationRule, error) {
	r, err := s.store.GetRule(ctx, userID, id)
	if err != nil {
		return models.CategorizationRule{}, err
	}
	if p.CategoryID != nil {
		r.CategoryID = strings.TrimSpace(*p.CategoryID)
	}
	if p.Name != nil {
		r.Name = strings.TrimSpace(*p.Name)
	}
	if p.MatchField != nil {
		field, err := models.ParseMatchField(*p.MatchField)
		if err != nil {
			return models.CategorizationRule{}, &parsererror.ValidationError{Field: "matchField", Reason: err.Error()}
		}
		r.MatchField = field
	}
	if p.MatchPattern != nil {
		r.MatchPattern = strings.TrimSpace(*p.MatchPattern)
	}
	if p.MinAmount != nil {
		r.MinAmount = p.MinAmount
	}
	if p.MaxAmount != nil {
		r.MaxAmount = p.MaxAmount
	}
	if p.Priority != nil {
		r.Priority = *p.Priority
	}
	if p.IsActive != nil {
		r.IsActive = *p.IsActive
	}
	if err := s.validate(ctx, r); err != nil {
		return models.CategorizationRule{}, err
	}

	if err := s.store.UpdateRule(ctx, &r); err != nil {
		return models.CategorizationRule{}, err
	}
	return r, nil
}

func (s *RuleService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteRule(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete rule %s: %w", id, err)
	}
	s.logger.Info("Rule deleted",
		logging.F(logging.FieldUserID, userID),
		logging.F(logging.FieldRuleID, id))
	return nil
}

// Preview evaluates the user's active rules against subject without
// persisting anything.
func (s *RuleService) Preview(ctx context.Context, userID string, subject categorizer.Subject) (Preview, error) {
	rules, err := s.store.ListActiveRules(ctx, userID)
	if err != nil {
		return Preview{}, fmt.Errorf("failed to load rules: %w", err)
	}
	subject.UserID = userID
	rule, ok := categorizer.Evaluate(rules, subject)
	if !ok {
		return Preview{}, nil
	}
	return Preview{Matched: true, Rule: &rule}, nil
}

func (s *RuleService) validate(ctx context.Context, r models.CategorizationRule) error {
	if err := validation.RequireText("name", r.Name); err != nil {
		return err
	}
	if err := validation.RequireText("categoryId", r.CategoryID); err != nil {
		return err
	}
	if err := categorizer.ValidateRule(r); err != nil {
		return &parsererror.ValidationError{Field: "matchPattern", Reason: err.Error()}
	}
	if _, err := s.store.GetCategory(ctx, r.UserID, r.CategoryID); err != nil {
		return fmt.Errorf("category %s: %w", r.CategoryID, err)
	}
	return nil
}
