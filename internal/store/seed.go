package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"

	"gopkg.in/yaml.v3"
)

// Seed is the administrative content of a fresh store. It is read from YAML:
//
//	categories:
//	  - name: Food
//	    type: Expense
//	rules:
//	  - keyword: NETFLIX
//	    category: Entertainment
type Seed struct {
	Categories []models.Category     `yaml:"categories"`
	Rules      []models.CategoryRule `yaml:"rules"`
}

// SeedResult counts what ApplySeed inserted.
type SeedResult struct {
	Categories int
	Rules      int
}

// DefaultSeed holds the allowed categories and no rules.
func DefaultSeed() Seed {
	return Seed{Categories: models.DefaultCategories()}
}

// FindSeedFile looks for filename as given, then under ./database and
// ~/.statement-ledger.
func FindSeedFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("database", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".statement-ledger", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadSeed reads a seed file. Missing categories default to DefaultSeed's;
// every category and rule must name an allowed category.
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- seed path comes from configuration
	if err != nil {
		return Seed{}, fmt.Errorf("could not read seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("could not parse seed file %s: %w", path, err)
	}
	if len(seed.Categories) == 0 {
		seed.Categories = models.DefaultCategories()
	}

	for i, c := range seed.Categories {
		if !models.IsAllowedCategory(c.Name) {
			return Seed{}, fmt.Errorf("seed file %s: category %q is not allowed", path, c.Name)
		}
		switch c.Type {
		case "":
			seed.Categories[i].Type = models.CategoryTypeExpense
		case models.CategoryTypeExpense, models.CategoryTypeIncome:
		default:
			return Seed{}, fmt.Errorf("seed file %s: category %q has unknown type %q", path, c.Name, c.Type)
		}
	}
	for i, r := range seed.Rules {
		keyword := strings.TrimSpace(r.Keyword)
		if keyword == "" {
			return Seed{}, fmt.Errorf("seed file %s: rule %d has an empty keyword", path, i+1)
		}
		if !models.IsAllowedCategory(r.Category) {
			return Seed{}, fmt.Errorf("seed file %s: rule %q maps to unknown category %q", path, keyword, r.Category)
		}
		seed.Rules[i].Keyword = keyword
	}
	return seed, nil
}

// ApplySeed inserts the seed categories into an empty category table and
// adds seed rules whose keyword is not yet known. Learned rules are never
// overwritten.
func ApplySeed(ctx context.Context, s Store, seed Seed, logger logging.Logger) (SeedResult, error) {
	logger = logging.OrDefault(logger)
	var res SeedResult

	n, err := s.SeedCategories(ctx, seed.Categories)
	if err != nil {
		return res, err
	}
	res.Categories = n

	for _, r := range seed.Rules {
		inserted, err := s.InsertRuleIfAbsent(ctx, r.Keyword, r.Category)
		if err != nil {
			return res, err
		}
		if inserted {
			res.Rules++
		}
	}

	if res.Categories > 0 || res.Rules > 0 {
		logger.Info("Seeded store",
			logging.Field{Key: "categories", Value: res.Categories},
			logging.Field{Key: "rules", Value: res.Rules})
	}
	return res, nil
}
