/*
Package session manages access to archived sessions and serialises work per key.

The Manager wraps a ports.SessionStore with reference-counted in-process locks and an
optional distributed lock, so that finished turns can be archived from the coordinator
while the front door serialises turns of the same user across replicas.
*/
package session
