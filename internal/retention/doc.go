// Package retention implements time- and count-based pruning of stored
// scan sessions.
//
// The Manager never touches SQL directly: it deletes through the
// SessionDB's transactional primitives so that results, progress, and
// session rows always disappear together. After any cleanup that
// reports nonzero deletions it vacuums the database to reclaim the
// freed space.
package retention
