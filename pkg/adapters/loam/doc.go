// Package loam loads a rule document from a directory of per-stage documents.
//
// Every file in the directory is one stage; its name (without extension) is
// the stage id unless the document sets "id". A file named "document" holds
// the document-level keys (vars, channel_sets, path_translation, output).
//
//	rules/
//	  document.yaml
//	  1.yaml
//	  9.md        # frontmatter holds the stage, the first body line names it
package loam
