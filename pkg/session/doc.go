/*
Package session manages named search sessions.

A session pairs a live search cursor with the snapshot persisted after every
advance. Access to a session is serialised with a per-key mutex and, when a
DistributedLocker is configured, a lock shared across replicas. Stored
snapshots outlive the process; only the live cursor can be advanced.
*/
package session
