// Package apply runs compiled rule sets over document files. Each run is
// all-or-nothing per document: a failed rule aborts that document without
// producing a partial result.
package apply

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/recast-dev/recast/internal/document"
	"github.com/recast-dev/recast/internal/rules"
	"github.com/recast-dev/recast/mutate"
	"github.com/recast-dev/recast/schema"
)

// RunID correlates the log lines of one apply run.
type RunID struct {
	value uuid.UUID
}

// NewRunID creates a new random run ID.
func NewRunID() RunID {
	return RunID{value: uuid.New()}
}

// String returns the string representation.
func (r RunID) String() string {
	return r.value.String()
}

// FileResult is the outcome of applying a rule set to one document file.
// Output holds the original bytes when nothing changed.
type FileResult struct {
	Path    string
	Changed bool
	Output  []byte
}

// Service applies rule sets to documents.
type Service struct {
	walker *mutate.Walker
	log    *slog.Logger
}

// NewService creates a service whose walker resolves composite types
// through reg.
func NewService(reg *schema.Registry, log *slog.Logger) *Service {
	return &Service{
		walker: mutate.New(reg, mutate.WithLogger(log)),
		log:    log,
	}
}

// ApplyDocument runs every rule over doc in declaration order. The returned
// document is doc itself when no rule changed anything.
func (s *Service) ApplyDocument(doc *document.Document, compiled []*rules.CompiledRule) (*document.Document, bool, error) {
	current := doc
	changed := false
	for _, rule := range compiled {
		result, err := s.walker.MutateDeep(current, rule.Mutator())
		if err != nil {
			return nil, false, fmt.Errorf("applying rule %q: %w", rule.Name(), err)
		}
		next := result.(*document.Document)
		if next != current {
			changed = true
			s.log.Debug("rule changed document", "rule", rule.Name())
		}
		current = next
	}
	return current, changed, nil
}

// ApplyFiles loads every path, applies the rules, and returns the encoded
// results in input order. Documents are independent, so files are processed
// concurrently, bounded by the CPU count.
func (s *Service) ApplyFiles(ctx context.Context, paths []string, compiled []*rules.CompiledRule) ([]FileResult, error) {
	run := NewRunID()
	log := s.log.With("run_id", run.String())
	log.Info("applying rules", "files", len(paths), "rules", len(compiled))

	results := make([]FileResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading document %q: %w", path, err)
			}
			doc, err := document.Decode(data)
			if err != nil {
				return fmt.Errorf("document %q: %w", path, err)
			}

			updated, changed, err := s.ApplyDocument(doc, compiled)
			if err != nil {
				return fmt.Errorf("document %q: %w", path, err)
			}

			out := data
			if changed {
				if out, err = document.Encode(updated); err != nil {
					return fmt.Errorf("document %q: %w", path, err)
				}
			}

			results[i] = FileResult{Path: path, Changed: changed, Output: out}
			log.Debug("document processed", "path", path, "changed", changed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("run complete", "files", len(results))
	return results, nil
}
