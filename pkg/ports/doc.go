/*
Package ports defines the capabilities the cback scheduler consumes.

These interfaces decouple scheduling from the concrete action bodies, process
execution, remote-peer transport and locking backends.

# Key Interfaces

  - ActionLookup / ImplementationResolver: bind action names and extension references to callables.
  - CommandRunner: runs hook commands and command-backed actions.
  - Peer / PeerFactory: execute a managed action on a remote peer.
  - Locker: keeps two runs of the same pool from overlapping.
*/
package ports
