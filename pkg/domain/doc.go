/*
Package domain contains the core value types of the solve pipeline.

Everything here is request scoped: a problem comes in, is analyzed, optionally computed,
explained and returned. Nothing is persisted and nothing is shared between requests, so the
package is kept free of I/O and external dependencies.

# Key Entities

  - ProblemRequest: the caller's problem statement and optional method preference.
  - ParsedAnalysis: labeled fields extracted from a free-text completion.
  - SolveResponse: the assembled result returned to the caller.
  - Stage: the position of a single solve in the pipeline state machine.
*/
package domain
