// Package storage is the SQLite-backed duty rule store.
// Rules and their lines are administered here and read by the engine
// through the rules.Repository contract.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"tariff-engine/core/types"
	"tariff-engine/internal/errors"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a SQLite rule repository
type Store struct {
	db *sql.DB
}

// Open opens the database, sets recommended pragmas, runs migrations, and
// validates connectivity
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA foreign_keys = ON;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set sqlite pragmas: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs all pending embedded migrations
func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("run goose up migrations: %w", err)
	}
	return nil
}

// FindActiveRuleLines implements rules.Repository. Lines come back in
// definition order (rule number, then line id) so summaries reproduce.
func (s *Store) FindActiveRuleLines(ctx context.Context, classificationCode, originCountry string) ([]types.RuleLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.reference_code, l.rate_percent, l.basis, l.description
		FROM rule_lines l
		JOIN duty_rules r ON r.id = l.rule_id
		WHERE r.classification_code = ?
		  AND r.origin_country = ?
		  AND r.is_active = 1
		  AND l.is_active = 1
		ORDER BY r.rule_number, l.id
	`, classificationCode, originCountry)
	if err != nil {
		return nil, errors.Repository("query rule lines", err)
	}
	defer rows.Close()

	var lines []types.RuleLine
	for rows.Next() {
		var (
			line      types.RuleLine
			rateStr   string
			basisName string
		)
		if err := rows.Scan(&line.ReferenceCode, &rateStr, &basisName, &line.Description); err != nil {
			return nil, errors.Repository("scan rule line", err)
		}
		rate, err := decimal.NewFromString(rateStr)
		if err != nil {
			return nil, errors.Wrapf(errors.TypeRepository, err, "bad rate %q", rateStr)
		}
		basis, err := types.ParseValueBasis(basisName)
		if err != nil {
			return nil, errors.Wrap(errors.TypeRepository, "bad basis", err)
		}
		line.RatePercent = rate
		line.Basis = basis
		line.IsActive = true
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Repository("iterate rule lines", err)
	}

	return lines, nil
}

// SaveRule upserts a rule and replaces its lines atomically
func (s *Store) SaveRule(ctx context.Context, rule types.DutyRule) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Repository("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO duty_rules (rule_number, classification_code, origin_country, kind, is_active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (rule_number) DO UPDATE SET
			classification_code = excluded.classification_code,
			origin_country = excluded.origin_country,
			kind = excluded.kind,
			is_active = excluded.is_active
	`, rule.RuleNumber, rule.ClassificationCode, rule.OriginCountry, rule.Kind, boolToInt(rule.IsActive)); err != nil {
		return errors.Repository("upsert rule", err)
	}

	// LastInsertId is unreliable on the upsert's update path
	var ruleID int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM duty_rules WHERE rule_number = ?`, rule.RuleNumber,
	).Scan(&ruleID); err != nil {
		return errors.Repository("resolve rule id", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rule_lines WHERE rule_id = ?`, ruleID); err != nil {
		return errors.Repository("clear rule lines", err)
	}

	for _, line := range rule.Lines {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO rule_lines (rule_id, reference_code, rate_percent, basis, description, is_active)
			VALUES (?, ?, ?, ?, ?, ?)
		`, ruleID, line.ReferenceCode, line.RatePercent.String(), line.Basis.String(), line.Description, boolToInt(line.IsActive)); err != nil {
			return errors.Repository("insert rule line", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Repository("commit rule", err)
	}
	return nil
}

// Seed saves every rule in the set, used by the admin CLI to import HCL
// rule files
func (s *Store) Seed(ctx context.Context, ruleset []types.DutyRule) error {
	for _, rule := range ruleset {
		if err := s.SaveRule(ctx, rule); err != nil {
			return err
		}
	}
	return nil
}

// ListRules returns every rule with its lines, in rule-number order
func (s *Store) ListRules(ctx context.Context) ([]types.DutyRule, error) {
	ruleRows, err := s.db.QueryContext(ctx, `
		SELECT id, rule_number, classification_code, origin_country, kind, is_active
		FROM duty_rules ORDER BY rule_number
	`)
	if err != nil {
		return nil, errors.Repository("query rules", err)
	}
	defer ruleRows.Close()

	var (
		ruleset []types.DutyRule
		ids     []int64
	)
	for ruleRows.Next() {
		var (
			id     int64
			rule   types.DutyRule
			active int
		)
		if err := ruleRows.Scan(&id, &rule.RuleNumber, &rule.ClassificationCode, &rule.OriginCountry, &rule.Kind, &active); err != nil {
			return nil, errors.Repository("scan rule", err)
		}
		rule.IsActive = active != 0
		ruleset = append(ruleset, rule)
		ids = append(ids, id)
	}
	if err := ruleRows.Err(); err != nil {
		return nil, errors.Repository("iterate rules", err)
	}

	for i, id := range ids {
		lines, err := s.linesForRule(ctx, id)
		if err != nil {
			return nil, err
		}
		ruleset[i].Lines = lines
	}

	return ruleset, nil
}

func (s *Store) linesForRule(ctx context.Context, ruleID int64) ([]types.RuleLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT reference_code, rate_percent, basis, description, is_active
		FROM rule_lines WHERE rule_id = ? ORDER BY id
	`, ruleID)
	if err != nil {
		return nil, errors.Repository("query rule lines", err)
	}
	defer rows.Close()

	var lines []types.RuleLine
	for rows.Next() {
		var (
			line      types.RuleLine
			rateStr   string
			basisName string
			active    int
		)
		if err := rows.Scan(&line.ReferenceCode, &rateStr, &basisName, &line.Description, &active); err != nil {
			return nil, errors.Repository("scan rule line", err)
		}
		rate, err := decimal.NewFromString(rateStr)
		if err != nil {
			return nil, errors.Wrapf(errors.TypeRepository, err, "bad rate %q", rateStr)
		}
		basis, err := types.ParseValueBasis(basisName)
		if err != nil {
			return nil, errors.Wrap(errors.TypeRepository, "bad basis", err)
		}
		line.RatePercent = rate
		line.Basis = basis
		line.IsActive = active != 0
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
