/*
Package domain contains the core types of the cback action scheduler.

It is kept free of I/O. Everything here is built fresh for each run from the
configuration snapshot and the requested action names.

# Key Entities

  - Binding: a schedulable instance of an action, local or for managed peers.
  - Hook: an external command run before or after an action body.
  - Plan: the ordered bindings of one run.
  - Snapshot: the configuration fields the scheduler consumes.
  - RunReport: the outcome of one run, including fail-soft peer failures.
*/
package domain
