/*
Package domain contains the shared vocabulary of the espalier rewriting engine.

It defines the sentinel errors, the search types, the lifecycle events used for
observability, and the printable snapshot of a search graph. This package is kept
pure and free of external dependencies so that every other layer (term store,
engines, adapters) can depend on it without cycles.

# Key Entities

  - SearchType: ONE_STEP, AT_LEAST_ONE_STEP, ANY_STEPS and NORMAL_FORM queries.
  - LifecycleHooks: callbacks fired on rewrites, discovered states and solutions.
  - Snapshot: a serializable export of a search session (states, parents, transitions).
*/
package domain
