package dsl

import (
	"fmt"

	"github.com/aretw0/stagegen/pkg/adapters/memory"
	"github.com/aretw0/stagegen/pkg/spec"
)

// Builder manages the document construction.
type Builder struct {
	doc    spec.Document
	stages map[string]*StageBuilder
	order  []string
}

// New creates a new document builder.
func New() *Builder {
	return &Builder{
		stages: make(map[string]*StageBuilder),
	}
}

// Describe sets the document metadata.
func (b *Builder) Describe(description, version string) *Builder {
	b.doc.Metadata = spec.Metadata{Description: description, Version: version}
	return b
}

// Var declares a constant visible to every template.
func (b *Builder) Var(name, value string) *Builder {
	if b.doc.Vars == nil {
		b.doc.Vars = make(map[string]string)
	}
	b.doc.Vars[name] = value
	return b
}

// ChannelSet declares a named channel list.
func (b *Builder) ChannelSet(name string, channels ...string) *Builder {
	if b.doc.ChannelSets == nil {
		b.doc.ChannelSets = make(map[string][]string)
	}
	b.doc.ChannelSets[name] = channels
	return b
}

// TranslatePaths rewrites the input prefix from into to on path columns.
func (b *Builder) TranslatePaths(from, to string) *Builder {
	b.doc.PathTranslation = &spec.PathTranslation{From: from, To: to}
	return b
}

// Output sets the per-stage file name patterns. Both must contain "{stage}".
func (b *Builder) Output(filename, reference string) *Builder {
	b.doc.Output = spec.Output{Filename: filename, Reference: reference}
	return b
}

// Stage creates a stage. If the stage already exists, it returns the existing builder.
func (b *Builder) Stage(id string) *StageBuilder {
	if sb, ok := b.stages[id]; ok {
		return sb
	}
	sb := &StageBuilder{stage: spec.Stage{ID: id}, builder: b}
	b.stages[id] = sb
	b.order = append(b.order, id)
	return sb
}

// Build assembles and validates the document.
func (b *Builder) Build() (*spec.Document, error) {
	doc := b.doc
	doc.Stages = make(map[string]*spec.Stage, len(b.stages))
	for _, id := range b.order {
		st := b.stages[id].stage
		doc.Stages[id] = &st
	}
	doc.Normalize()

	if err := spec.Validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Loader builds the document and wraps it in a memory loader.
func (b *Builder) Loader() (*memory.Loader, error) {
	doc, err := b.Build()
	if err != nil {
		return nil, err
	}
	loader, err := memory.NewFromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}
