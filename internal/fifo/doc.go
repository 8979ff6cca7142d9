// Package fifo manages the named-pipe pair the server and clients talk over.
//
// The server creates both pipes at startup and removes them on shutdown;
// clients only open them. Opens follow the usual FIFO rules: opening for
// reading blocks until a writer opens the pipe, and vice versa.
//
// Clients additionally serialise their own transactions with an advisory
// flock on "<request path>.lock" so that two clients never have requests or
// responses in flight on the shared pipes at once.
package fifo
