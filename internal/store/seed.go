package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/rabbit/internal/logging"
	"fjacquet/rabbit/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Seed file names inside a profile directory
const (
	CategoriesFile = "categories.yaml"
	RulesFile      = "rules.yaml"
)

// ProfileSeed is the on-disk description of one profile.
type ProfileSeed struct {
	Name       string
	Categories []models.Category
	Rules      []models.Rule
}

type categoryRecord struct {
	Name   string `yaml:"name"`
	Budget string `yaml:"budget"`
}

// LoadCategoriesFile reads a YAML list of {name, budget}. A missing file yields no categories.
// Entries without a name are skipped and an unreadable budget counts as zero.
func LoadCategoriesFile(path string) ([]models.Category, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- seed path comes from configuration
	if errors.Is(err, os.ErrNotExist) {
		return []models.Category{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading categories file: %w", err)
	}

	var records []categoryRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("error parsing categories file %s: %w", path, err)
	}

	categories := make([]models.Category, 0, len(records))
	for _, rec := range records {
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			continue
		}
		budget, err := decimal.NewFromString(strings.TrimSpace(rec.Budget))
		if err != nil || budget.IsNegative() {
			budget = decimal.Zero
		}
		categories = append(categories, models.Category{Name: name, Budget: budget})
	}
	return categories, nil
}

// LoadRulesFile reads a YAML mapping of keyword to category, keeping the file order.
// A missing file yields no rules. Empty keywords are skipped.
func LoadRulesFile(path string) ([]models.Rule, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- seed path comes from configuration
	if errors.Is(err, os.ErrNotExist) {
		return []models.Rule{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading rules file: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing rules file %s: %w", path, err)
	}

	rules := []models.Rule{}
	if len(doc.Content) == 0 {
		return rules, nil
	}
	mapping := doc.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("rules file %s: expected a mapping of keyword to category", path)
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keyword := models.NormalizeKeyword(mapping.Content[i].Value)
		if keyword == "" {
			continue
		}
		rules = append(rules, models.Rule{
			Keyword:  keyword,
			Category: strings.TrimSpace(mapping.Content[i+1].Value),
		})
	}
	return rules, nil
}

// LoadSeeds reads every profile directory under dir, in name order.
// A missing dir yields no seeds.
func LoadSeeds(dir string) ([]ProfileSeed, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading seed directory: %w", err)
	}

	var seeds []ProfileSeed
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		profileDir := filepath.Join(dir, entry.Name())
		categories, err := LoadCategoriesFile(filepath.Join(profileDir, CategoriesFile))
		if err != nil {
			return nil, err
		}
		rules, err := LoadRulesFile(filepath.Join(profileDir, RulesFile))
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, ProfileSeed{Name: entry.Name(), Categories: categories, Rules: rules})
	}
	return seeds, nil
}

// Bootstrap imports the seeds found under dir, but only into a database without profiles.
// It returns the number of imported profiles.
func (s *SQLStore) Bootstrap(ctx context.Context, dir string) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	seeds, err := LoadSeeds(dir)
	if err != nil {
		return 0, err
	}
	if len(seeds) == 0 {
		return 0, nil
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		for _, seed := range seeds {
			if err := insertProfile(ctx, tx, seed.Name); err != nil {
				return err
			}
			id, err := profileID(ctx, tx, seed.Name)
			if err != nil {
				return err
			}
			for _, c := range seed.Categories {
				if _, err := tx.ExecContext(ctx,
					`INSERT OR IGNORE INTO categories(profile_id, name, budget) VALUES(?, ?, ?)`,
					id, c.Name, c.Budget.String()); err != nil {
					return err
				}
			}
			for _, r := range seed.Rules {
				category := r.Category
				if category == "" {
					category = models.CategoryUncategorized
				}
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO rules(profile_id, keyword, category) VALUES(?, ?, ?)
					ON CONFLICT(profile_id, keyword) DO UPDATE SET category = excluded.category`,
					id, r.Keyword, category); err != nil {
					return err
				}
			}
			s.logger.Info("Imported profile seed",
				logging.Field{Key: logging.FieldProfile, Value: seed.Name},
				logging.Field{Key: logging.FieldCount, Value: len(seed.Rules)})
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to bootstrap from %s: %w", dir, err)
	}
	return len(seeds), nil
}
