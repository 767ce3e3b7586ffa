package loam

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/aretw0/stagegen/pkg/spec"
)

// DocumentID is the reserved id of the document-level file.
const DocumentID = "document"

// Frontmatter is the raw metadata of one document.
type Frontmatter map[string]any

// Loader adapts a Loam repository to ports.SpecLoader.
type Loader struct {
	Repo   *loam.TypedRepository[Frontmatter]
	source string
}

// New wraps an existing typed repository.
func New(repo *loam.TypedRepository[Frontmatter], source string) *Loader {
	return &Loader{Repo: repo, source: source}
}

// Open initializes a read-only Loam repository over dir.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numbers as json.Number across YAML, JSON and Markdown.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[Frontmatter](repo), absPath), nil
}

// Source implements ports.SpecLoader.
func (l *Loader) Source() string { return l.source }

// Load implements ports.SpecLoader. Stage decode errors are collected.
func (l *Loader) Load(ctx context.Context) (*spec.Document, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	base := map[string]any{}
	stages := make(map[string]*spec.Stage)
	seen := make(map[string]string)
	var errs []*domain.SpecError

	for _, doc := range docs {
		raw := maps.Clone(map[string]any(doc.Data))
		if raw == nil {
			raw = map[string]any{}
		}

		// 1. Resolve the id, explicit "id" wins over the file name
		id := trimExtension(filepath.Base(doc.ID))
		if explicit, ok := raw["id"]; ok {
			id = trimExtension(fmt.Sprint(explicit))
			delete(raw, "id")
		}
		if existing, ok := seen[id]; ok {
			errs = append(errs, &domain.SpecError{
				Stage:  id,
				Reason: fmt.Sprintf("collision detected: id %q is defined in both %q and %q", id, existing, doc.ID),
			})
			continue
		}
		seen[id] = doc.ID

		// 2. Document-level keys
		if id == DocumentID {
			if _, ok := raw["stages"]; ok {
				errs = append(errs, &domain.SpecError{Field: "stages", Reason: "stages live in their own documents"})
				delete(raw, "stages")
			}
			base = raw
			continue
		}

		// 3. One stage per document
		st, err := spec.DecodeStage(id, raw)
		if err != nil {
			errs = append(errs, asSpecError(id, err))
			continue
		}
		if st.Name == "" {
			// List returns metadata only; the body holds the title.
			full, err := l.Repo.Get(ctx, doc.ID)
			if err != nil {
				return nil, fmt.Errorf("loam get failed for %s: %w", doc.ID, err)
			}
			st.Name = title(full.Content)
		}
		stages[id] = st
	}

	if err := spec.Join(errs); err != nil {
		return nil, err
	}

	doc, err := spec.Decode(base)
	if err != nil {
		return nil, err
	}
	doc.Stages = stages
	doc.Normalize()
	return doc, nil
}

// Stages lists the stage ids present in the repository, in natural order.
func (l *Loader) Stages(ctx context.Context) ([]string, error) {
	doc, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.StageIDs(), nil
}

func asSpecError(id string, err error) *domain.SpecError {
	var se *domain.SpecError
	if errors.As(err, &se) {
		return se
	}
	return &domain.SpecError{Stage: id, Reason: "decode failed", Err: err}
}

// title takes the first non-empty body line, without heading markers.
func title(content string) string {
	for line := range strings.Lines(content) {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
		if line != "" {
			return line
		}
	}
	return ""
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}
