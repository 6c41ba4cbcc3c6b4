package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/mpataki/slicer/internal/document"
	"github.com/mpataki/slicer/internal/interpret"
	"github.com/mpataki/slicer/internal/models"
	"github.com/mpataki/slicer/internal/rules"
	"github.com/mpataki/slicer/internal/storage"
)

// Pipeline interprets documents, applies rule scripts and records history.
type Pipeline struct {
	storage   *storage.Storage
	rulesDirs []string
	log       *slog.Logger
}

// New returns a pipeline. store may be nil when history is not used; an
// empty rulesDirs disables rules.
func New(store *storage.Storage, rulesDirs []string, log *slog.Logger) *Pipeline {
	return &Pipeline{
		storage:   store,
		rulesDirs: rulesDirs,
		log:       log,
	}
}

type Options struct {
	Save bool
}

type Result struct {
	AnalysisID     int64
	Source         *document.Source
	Interpretation *models.Interpretation
	RuleFindings   []string
}

func (p *Pipeline) Analyze(src *document.Source, opts Options) (*Result, error) {
	interp := interpret.Interpret(src.Data)
	p.log.Debug("document interpreted",
		"path", src.Path,
		"slices", len(interp.Slices),
		"warnings", len(interp.Warnings))

	res := &Result{Source: src, Interpretation: interp}

	findings, err := p.applyRules(interp)
	if err != nil {
		return nil, err
	}
	res.RuleFindings = findings

	if opts.Save {
		id, err := p.save(src, interp, findings)
		if err != nil {
			return nil, err
		}
		res.AnalysisID = id
	}

	return res, nil
}

func (p *Pipeline) applyRules(interp *models.Interpretation) ([]string, error) {
	if len(p.rulesDirs) == 0 {
		return nil, nil
	}

	found, err := rules.Discover(p.rulesDirs)
	if err != nil {
		return nil, fmt.Errorf("failed to discover rules: %w", err)
	}
	if len(found) == 0 {
		return nil, nil
	}

	rt := rules.NewRuntime()
	findings, err := rt.Run(found, interp)
	if err != nil {
		return nil, err
	}
	for _, msg := range rt.Logs() {
		p.log.Info(msg)
	}
	p.log.Debug("rules applied", "rules", len(found), "findings", len(findings))
	return findings, nil
}

func (p *Pipeline) save(src *document.Source, interp *models.Interpretation, findings []string) (int64, error) {
	if p.storage == nil {
		return 0, fmt.Errorf("history storage is not configured")
	}

	analysis := &models.Analysis{
		SourcePath:   src.Path,
		SourceHash:   Hash(src.Data),
		SliceCount:   interp.Summary.TotalSlices,
		WarningCount: len(interp.Warnings),
		RuleFindings: findings,
		Result:       interp,
	}
	id, err := p.storage.CreateAnalysis(analysis)
	if err != nil {
		return 0, fmt.Errorf("failed to save analysis: %w", err)
	}
	p.log.Info("analysis saved", "id", id, "path", src.Path)
	return id, nil
}

// Changed reports whether src differs from the last saved analysis of the
// same text. It is false when an identical analysis exists.
func (p *Pipeline) Changed(src *document.Source) (bool, error) {
	if p.storage == nil {
		return true, nil
	}
	prev, err := p.storage.LatestByHash(Hash(src.Data))
	if err != nil {
		return false, err
	}
	return prev == nil, nil
}

func (p *Pipeline) ListAnalyses(limit int) ([]*models.Analysis, error) {
	if p.storage == nil {
		return nil, nil
	}
	return p.storage.ListAnalyses(limit)
}

func (p *Pipeline) GetAnalysis(id int64) (*models.Analysis, error) {
	if p.storage == nil {
		return nil, fmt.Errorf("history storage is not configured")
	}
	return p.storage.GetAnalysis(id)
}

func (p *Pipeline) DeleteAnalysis(id int64) error {
	if p.storage == nil {
		return fmt.Errorf("history storage is not configured")
	}
	return p.storage.DeleteAnalysis(id)
}

// Hash is the hex SHA-256 of the document text.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
