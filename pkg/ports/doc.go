/*
Package ports defines the driven ports (interfaces) for the stage table generator.

These interfaces decouple the engine from where rule documents, sample records
and reference tables live, and from where generated tables go.

# Key Interfaces

  - SpecLoader: Retrieves the rule document (file, loam directory, memory).
  - RecordSource: Yields the sample records of one run (input table).
  - TableSink: Receives every generated stage table.
  - ReferenceSource: Provides reference tables for validate mode.
*/
package ports
