/*
Package knowledge implements the campus knowledge store.

Static knowledge (slang, food, campus_info) is read-only and comes from an
embedded YAML seed or a file given at startup; Watch reloads that file when it
changes. Learned knowledge is what users teach: it is stored per user in
personal categories and, once enough distinct users taught the same thing,
promoted into shared categories visible to everyone.

Searches over learned knowledge try substring matching first and fall back to
an in-memory bleve index.
*/
package knowledge
