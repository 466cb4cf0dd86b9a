// Package store loads and saves YAML seed files and applies them to a user's
// data: accounts, categories with their keywords, and categorization rules.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/spendwise/internal/logging"
	"fjacquet/spendwise/internal/models"
	"fjacquet/spendwise/internal/service"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DefaultSeedFile is the file name looked up when none is configured.
const DefaultSeedFile = "seed.yaml"

// SeedAccount is an account entry of a seed file.
type SeedAccount struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Currency    string `yaml:"currency,omitempty"`
	Balance     string `yaml:"balance,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// SeedCategory is a category entry. Parent refers to another category by
// name and must appear earlier in the file or already exist. Keywords become
// one DESCRIPTION rule.
type SeedCategory struct {
	Name     string   `yaml:"name"`
	Color    string   `yaml:"color,omitempty"`
	Parent   string   `yaml:"parent,omitempty"`
	Keywords []string `yaml:"keywords,omitempty"`
}

// SeedRule is an explicit rule entry. Category refers to a category by name.
type SeedRule struct {
	Name       string `yaml:"name"`
	Category   string `yaml:"category"`
	MatchField string `yaml:"match_field"`
	Pattern    string `yaml:"pattern"`
	MinAmount  string `yaml:"min_amount,omitempty"`
	MaxAmount  string `yaml:"max_amount,omitempty"`
	Priority   int    `yaml:"priority,omitempty"`
	Active     *bool  `yaml:"active,omitempty"`
}

// SeedFile is the top-level document.
type SeedFile struct {
	Accounts   []SeedAccount  `yaml:"accounts,omitempty"`
	Categories []SeedCategory `yaml:"categories,omitempty"`
	Rules      []SeedRule     `yaml:"rules,omitempty"`
}

// Empty reports whether the seed contains nothing to apply.
func (f SeedFile) Empty() bool {
	return len(f.Accounts) == 0 && len(f.Categories) == 0 && len(f.Rules) == 0
}

// SeedStore reads and writes a seed file.
type SeedStore struct {
	File   string
	logger logging.Logger
}

// NewSeedStore creates a store for file. An empty name means DefaultSeedFile.
func NewSeedStore(file string, logger logging.Logger) *SeedStore {
	if file == "" {
		file = DefaultSeedFile
	}
	return &SeedStore{File: file, logger: logger}
}

// FindConfigFile looks for a configuration file in standard locations
func (s *SeedStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,                          // Current directory
		filepath.Join("config", filename), // ./config/ directory
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	// If still not found, check in user's home directory under .config/spendwise/
	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".config", "spendwise", filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	return "", os.ErrNotExist
}

// Load reads the seed file. A missing file yields an empty seed, not an
// error. A document that is a bare list is read as a list of categories.
func (s *SeedStore) Load() (SeedFile, error) {
	path, err := s.FindConfigFile(s.File)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Seed file not found", logging.F(logging.FieldFile, s.File))
			return SeedFile{}, nil
		}
		return SeedFile{}, fmt.Errorf("error resolving seed file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return SeedFile{}, fmt.Errorf("error reading seed file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err == nil {
		s.logger.Debug("Loaded seed file",
			logging.F(logging.FieldFile, path),
			logging.F(logging.FieldCount, len(seed.Accounts)+len(seed.Categories)+len(seed.Rules)))
		return seed, nil
	}

	var categories []SeedCategory
	if err := yaml.Unmarshal(data, &categories); err != nil {
		return SeedFile{}, fmt.Errorf("error parsing seed file %s: %w", path, err)
	}
	s.logger.Debug("Loaded seed file as a category list",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(categories)))
	return SeedFile{Categories: categories}, nil
}

// Save writes seed to the store's file, creating the parent directory.
func (s *SeedStore) Save(seed SeedFile) error {
	path := s.File
	if found, err := s.FindConfigFile(s.File); err == nil {
		path = found
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	data, err := yaml.Marshal(seed)
	if err != nil {
		return fmt.Errorf("error marshaling seed: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("error writing seed file: %w", err)
	}

	s.logger.Debug("Saved seed file", logging.F(logging.FieldFile, path))
	return nil
}

// AccountService is the account surface used by Apply.
type AccountService interface {
	Create(ctx context.Context, userID string, in service.AccountInput) (models.Account, error)
	List(ctx context.Context, userID string) ([]models.Account, error)
}

// CategoryService is the category surface used by Apply and Export.
type CategoryService interface {
	Create(ctx context.Context, userID string, in service.CategoryInput) (models.Category, error)
	List(ctx context.Context, userID string) (service.CategoryList, error)
}

// RuleService is the rule surface used by Apply and Export.
type RuleService interface {
	Create(ctx context.Context, userID string, in service.RuleInput) (models.CategorizationRule, error)
	List(ctx context.Context, userID string) ([]models.CategorizationRule, error)
}

// Seeder applies seed files through the services so that the usual
// validation and ownership checks hold.
type Seeder struct {
	accounts   AccountService
	categories CategoryService
	rules      RuleService
	logger     logging.Logger
}

// NewSeeder creates a Seeder.
func NewSeeder(accounts AccountService, categories CategoryService, rules RuleService, logger logging.Logger) *Seeder {
	return &Seeder{accounts: accounts, categories: categories, rules: rules, logger: logger}
}

// SeedResult counts what Apply created and what already existed.
type SeedResult struct {
	Accounts   int
	Categories int
	Rules      int
	Skipped    int
}

// KeywordRuleName is the name of the rule generated from a category's keywords.
func KeywordRuleName(category string) string {
	return category + " keywords"
}

// Apply creates the seed's accounts, categories and rules for userID.
// Entries whose name already exists for the user (case-insensitive) are
// skipped, so applying the same file twice is harmless.
func (s *Seeder) Apply(ctx context.Context, userID string, seed SeedFile) (SeedResult, error) {
	var res SeedResult

	accounts, err := s.accounts.List(ctx, userID)
	if err != nil {
		return res, err
	}
	accountNames := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		accountNames[key(a.Name)] = true
	}
	for _, sa := range seed.Accounts {
		if accountNames[key(sa.Name)] {
			res.Skipped++
			continue
		}
		in := service.AccountInput{Name: sa.Name, Type: sa.Type, Currency: sa.Currency, Description: sa.Description}
		if sa.Balance != "" {
			b, err := decimal.NewFromString(sa.Balance)
			if err != nil {
				return res, fmt.Errorf("account %q: invalid balance %q: %w", sa.Name, sa.Balance, err)
			}
			in.Balance = &b
		}
		if _, err := s.accounts.Create(ctx, userID, in); err != nil {
			return res, fmt.Errorf("account %q: %w", sa.Name, err)
		}
		accountNames[key(sa.Name)] = true
		res.Accounts++
	}

	list, err := s.categories.List(ctx, userID)
	if err != nil {
		return res, err
	}
	categoryIDs := make(map[string]string, len(list.Categories))
	for _, c := range list.Categories {
		if _, ok := categoryIDs[key(c.Name)]; !ok {
			categoryIDs[key(c.Name)] = c.ID
		}
	}
	rules, err := s.rules.List(ctx, userID)
	if err != nil {
		return res, err
	}
	ruleNames := make(map[string]bool, len(rules))
	for _, r := range rules {
		ruleNames[key(r.Name)] = true
	}

	for _, sc := range seed.Categories {
		id, exists := categoryIDs[key(sc.Name)]
		if exists {
			res.Skipped++
		} else {
			in := service.CategoryInput{Name: sc.Name, Color: sc.Color}
			if sc.Parent != "" {
				parentID, ok := categoryIDs[key(sc.Parent)]
				if !ok {
					return res, fmt.Errorf("category %q: unknown parent %q", sc.Name, sc.Parent)
				}
				in.ParentID = &parentID
			}
			c, err := s.categories.Create(ctx, userID, in)
			if err != nil {
				return res, fmt.Errorf("category %q: %w", sc.Name, err)
			}
			id = c.ID
			categoryIDs[key(sc.Name)] = id
			res.Categories++
		}

		if len(sc.Keywords) == 0 {
			continue
		}
		name := KeywordRuleName(sc.Name)
		if ruleNames[key(name)] {
			res.Skipped++
			continue
		}
		if _, err := s.rules.Create(ctx, userID, service.RuleInput{
			CategoryID:   id,
			Name:         name,
			MatchField:   string(models.MatchDescription),
			MatchPattern: strings.Join(sc.Keywords, ","),
		}); err != nil {
			return res, fmt.Errorf("keywords of category %q: %w", sc.Name, err)
		}
		ruleNames[key(name)] = true
		res.Rules++
	}

	for _, sr := range seed.Rules {
		if ruleNames[key(sr.Name)] {
			res.Skipped++
			continue
		}
		categoryID, ok := categoryIDs[key(sr.Category)]
		if !ok {
			return res, fmt.Errorf("rule %q: unknown category %q", sr.Name, sr.Category)
		}
		in := service.RuleInput{
			CategoryID:   categoryID,
			Name:         sr.Name,
			MatchField:   sr.MatchField,
			MatchPattern: sr.Pattern,
			IsActive:     sr.Active,
		}
		if sr.Priority != 0 {
			priority := sr.Priority
			in.Priority = &priority
		}
		if in.MinAmount, err = optionalDecimal(sr.MinAmount); err != nil {
			return res, fmt.Errorf("rule %q: invalid min_amount: %w", sr.Name, err)
		}
		if in.MaxAmount, err = optionalDecimal(sr.MaxAmount); err != nil {
			return res, fmt.Errorf("rule %q: invalid max_amount: %w", sr.Name, err)
		}
		if _, err := s.rules.Create(ctx, userID, in); err != nil {
			return res, fmt.Errorf("rule %q: %w", sr.Name, err)
		}
		ruleNames[key(sr.Name)] = true
		res.Rules++
	}

	s.logger.Info("Seed applied",
		logging.F(logging.FieldUserID, userID),
		logging.F("accounts", res.Accounts),
		logging.F("categories", res.Categories),
		logging.F("rules", res.Rules),
		logging.F("skipped", res.Skipped))
	return res, nil
}

// Export builds a seed document from the user's accounts, categories and
// rules. Keyword rules are folded back into their category and accounts
// carry their current balance.
func (s *Seeder) Export(ctx context.Context, userID string) (SeedFile, error) {
	accounts, err := s.accounts.List(ctx, userID)
	if err != nil {
		return SeedFile{}, err
	}
	list, err := s.categories.List(ctx, userID)
	if err != nil {
		return SeedFile{}, err
	}
	rules, err := s.rules.List(ctx, userID)
	if err != nil {
		return SeedFile{}, err
	}

	names := make(map[string]string, len(list.Categories))
	for _, c := range list.Categories {
		names[c.ID] = c.Name
	}

	children := make(map[string][]models.Category)
	var roots []models.Category
	for _, c := range list.Categories {
		if c.ParentID != nil && names[*c.ParentID] != "" {
			children[*c.ParentID] = append(children[*c.ParentID], c)
			continue
		}
		roots = append(roots, c)
	}

	var seed SeedFile
	// List returns newest first; the file reads better oldest first
	for i := len(accounts) - 1; i >= 0; i-- {
		a := accounts[i]
		seed.Accounts = append(seed.Accounts, SeedAccount{
			Name:        a.Name,
			Type:        a.Type,
			Currency:    a.Currency,
			Balance:     a.Balance.String(),
			Description: a.Description,
		})
	}

	// parents precede their children so the file can be applied in order
	index := make(map[string]int, len(list.Categories))
	var walk func(c models.Category, parent string)
	walk = func(c models.Category, parent string) {
		if _, seen := index[c.ID]; seen {
			return
		}
		index[c.ID] = len(seed.Categories)
		seed.Categories = append(seed.Categories, SeedCategory{Name: c.Name, Color: c.Color, Parent: parent})
		for _, child := range children[c.ID] {
			walk(child, c.Name)
		}
	}
	for _, root := range roots {
		walk(root, "")
	}
	// members of a parent cycle have no root; export them detached
	for _, c := range list.Categories {
		walk(c, "")
	}

	for _, r := range rules {
		if i, ok := index[r.CategoryID]; ok && r.MatchField == models.MatchDescription &&
			r.Name == KeywordRuleName(names[r.CategoryID]) && r.IsActive && r.Priority == models.DefaultRulePriority {
			for _, kw := range strings.Split(r.MatchPattern, ",") {
				if kw = strings.TrimSpace(kw); kw != "" {
					seed.Categories[i].Keywords = append(seed.Categories[i].Keywords, kw)
				}
			}
			continue
		}
		sr := SeedRule{
			Name:       r.Name,
			Category:   names[r.CategoryID],
			MatchField: string(r.MatchField),
			Pattern:    r.MatchPattern,
			Priority:   r.Priority,
		}
		if !r.IsActive {
			inactive := false
			sr.Active = &inactive
		}
		if r.MinAmount != nil {
			sr.MinAmount = r.MinAmount.String()
		}
		if r.MaxAmount != nil {
			sr.MaxAmount = r.MaxAmount.String()
		}
		seed.Rules = append(seed.Rules, sr)
	}
	return seed, nil
}

func optionalDecimal(s string) (*decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
