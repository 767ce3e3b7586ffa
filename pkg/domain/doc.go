/*
Package domain contains the core domain models of the stagegen engine.

It defines the narrow input records, the wide per-stage output tables and the
typed errors raised while turning one into the other. This package is kept pure
and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - SampleRecord: One acquired multi-channel file-set (one row of the input table).
  - OutputRow: An ordered column -> value mapping assembled for one group.
  - Table: All rows of one stage, sharing an identical column header.
  - StageResult: The outcome (table or stage-scoped error) of generating one stage.
  - TableDiff: The structural difference between a generated and a reference table.
*/
package domain
