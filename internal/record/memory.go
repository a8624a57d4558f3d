package record

import "sync"

// MemoryLogger keeps records in memory. Used by tests and by runs that do
// not need the data to survive the process.
type MemoryLogger struct {
	mu      sync.RWMutex
	records []*Record
}

func NewMemoryLogger() *MemoryLogger { return &MemoryLogger{} }

var _ Logger = (*MemoryLogger)(nil)
var _ Reader = (*MemoryLogger)(nil)

func (l *MemoryLogger) Append(r *Record) error {
	cp := *r
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, &cp)
	return nil
}

func (l *MemoryLogger) List() ([]*Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*Record(nil), l.records...), nil
}
