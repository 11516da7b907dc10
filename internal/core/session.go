package core

// Frame is an encoded outbound event.
type Frame []byte

// SessionID identifies one live connection.
type SessionID string

// SignalConn abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConn interface {
	TrySend(Frame) error
	Close()
}
