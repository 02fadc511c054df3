/*
Package session hosts editors for many documents at once.

A Manager opens one easel.Editor per document id on demand, serializes every
call against it (locally, and across replicas when a DistributedLocker is
configured) and saves the snapshot to the DocumentStore whenever a call
changed it.
*/
package session
