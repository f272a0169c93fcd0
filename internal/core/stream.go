package core

// Stream is a finite, non-restartable producer of completion fragments.
// The consumer pulls at its own pace:
//
//	for s.Next() {
//		fmt.Print(s.Current())
//	}
//	if err := s.Err(); err != nil { ... }
//
// An abandoned stream is simply no longer pulled; Close releases the
// underlying provider connection.
type Stream interface {
	Next() bool
	Current() string
	Err() error
	Close() error
}
