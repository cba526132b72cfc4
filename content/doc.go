// Package content owns the learning artifacts produced during one tutoring
// session: flash cards and multiple-choice quizzes. The Store is the single
// writer for both collections; identifiers are allocated here and never
// accepted from a remote peer. Nothing in this package performs I/O;
// synchronizing artifacts to the connected client is the dispatch package's
// concern.
package content
