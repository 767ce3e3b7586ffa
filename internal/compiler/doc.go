// Package compiler turns filter expressions and column templates into small
// typed syntax trees that are checked once against a scope and then evaluated
// per record or per group.
//
// The grammar is closed: field references, string/integer/list literals,
// "==", "in", "and", parentheses and calls to a fixed whitelist of pure
// functions. Nothing is ever handed to a general-purpose evaluator.
package compiler
