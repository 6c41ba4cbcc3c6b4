package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mpataki/slicer/internal/models"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when an analysis id does not exist.
var ErrNotFound = errors.New("analysis not found")

type Storage struct {
	db *sql.DB
}

func New(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		source_path TEXT NOT NULL,
		source_hash TEXT NOT NULL,
		slice_count INTEGER NOT NULL,
		warning_count INTEGER NOT NULL,
		rule_findings TEXT,
		result TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_hash ON analyses(source_hash);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Storage) CreateAnalysis(a *models.Analysis) (int64, error) {
	result, err := json.Marshal(a.Result)
	if err != nil {
		return 0, fmt.Errorf("failed to encode interpretation: %w", err)
	}

	var findings *string
	if len(a.RuleFindings) > 0 {
		data, err := json.Marshal(a.RuleFindings)
		if err != nil {
			return 0, err
		}
		str := string(data)
		findings = &str
	}

	res, err := s.db.Exec(
		`INSERT INTO analyses (source_path, source_hash, slice_count, warning_count, rule_findings, result)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.SourcePath, a.SourceHash, a.SliceCount, a.WarningCount, findings, string(result),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Storage) GetAnalysis(id int64) (*models.Analysis, error) {
	row := s.db.QueryRow(
		`SELECT id, created_at, source_path, source_hash, slice_count, warning_count, rule_findings, result
		 FROM analyses WHERE id = ?`, id,
	)

	a, err := scanAnalysis(row.Scan, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("analysis %d: %w", id, ErrNotFound)
	}
	return a, err
}

// ListAnalyses returns the newest analyses first, without their results.
func (s *Storage) ListAnalyses(limit int) ([]*models.Analysis, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, source_path, source_hash, slice_count, warning_count, rule_findings, ''
		 FROM analyses ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows.Scan, false)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}

	return list, rows.Err()
}

// LatestByHash returns the most recent analysis of identical input text, or
// nil if there is none.
func (s *Storage) LatestByHash(hash string) (*models.Analysis, error) {
	row := s.db.QueryRow(
		`SELECT id, created_at, source_path, source_hash, slice_count, warning_count, rule_findings, result
		 FROM analyses WHERE source_hash = ? ORDER BY id DESC LIMIT 1`, hash,
	)

	a, err := scanAnalysis(row.Scan, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (s *Storage) DeleteAnalysis(id int64) error {
	res, err := s.db.Exec(`DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("analysis %d: %w", id, ErrNotFound)
	}
	return nil
}

func scanAnalysis(scan func(dest ...any) error, withResult bool) (*models.Analysis, error) {
	var a models.Analysis
	var findings sql.NullString
	var result string

	err := scan(
		&a.ID, &a.CreatedAt, &a.SourcePath, &a.SourceHash,
		&a.SliceCount, &a.WarningCount, &findings, &result,
	)
	if err != nil {
		return nil, err
	}

	if findings.Valid {
		if err := json.Unmarshal([]byte(findings.String), &a.RuleFindings); err != nil {
			return nil, fmt.Errorf("failed to decode rule findings: %w", err)
		}
	}
	if withResult {
		a.Result = &models.Interpretation{}
		if err := json.Unmarshal([]byte(result), a.Result); err != nil {
			return nil, fmt.Errorf("failed to decode interpretation: %w", err)
		}
	}

	return &a, nil
}
