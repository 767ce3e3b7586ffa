// Package runtime executes a validated rule document against sample records.
//
// Each stage runs the same pipeline: filter records, partition them into
// groups (first-seen order), expand every column group against each group and
// assemble one row per group. Synthetic stages enumerate an upstream stage's
// groups times a fixed tile count instead. Stages share no mutable state and
// run concurrently.
package runtime
