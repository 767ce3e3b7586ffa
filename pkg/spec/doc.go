/*
Package spec defines the declarative rule document that drives table generation.

A Document maps stage identifiers to Stage rules. Each Stage declares a filter
expression over sample record fields, an ordered grouping key tuple and an
ordered list of column groups (static, per-channel or per-cycle).

Documents are decoded from YAML or JSON into generic maps and then into typed
structs with mapstructure, so unknown keys are rejected. Structural validation
uses go-playground/validator tags plus cross-reference checks (synthetic
upstream stages, named channel sets). Expression and template validation is
done by the runtime compiler, which needs the template scopes.
*/
package spec
