/*
Package session serializes access to respondent sessions.

A Manager wraps a ports.SessionStore with per-key mutexes so that
read-modify-write cycles on a flow record never interleave. When a
ports.DistributedLocker is configured the same keys are also locked across
replicas.
*/
package session
