/*
Package ports defines the driven ports (interfaces) of the solve pipeline.

These interfaces decouple the orchestrator from the remote services it talks to, so the
pipeline can be exercised with in-memory fakes and wired to real providers at start-up.

# Key Interfaces

  - Completer: sends a prompt to a text-generation provider and returns raw text.
  - SymbolicMath: asks a computation service to apply an operation to an expression.
*/
package ports
