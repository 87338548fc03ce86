package powersupply

import "sync/atomic"

// Monitor holds the most recent successful Status for a sysfs root.
// Refresh is meant to be driven by a single polling loop; Current may be
// called from any goroutine and always sees a complete Status.
type Monitor struct {
	root    string
	current atomic.Pointer[Status]
}

// NewMonitor performs the initial scan of root.
func NewMonitor(root string) (*Monitor, error) {
	s, err := Read(root)
	if err != nil {
		return nil, err
	}
	m := &Monitor{root: root}
	m.current.Store(s)
	return m, nil
}

// Root returns the directory being scanned.
func (m *Monitor) Root() string {
	return m.root
}

// Current returns the Status from the last successful scan.
func (m *Monitor) Current() *Status {
	return m.current.Load()
}

// Refresh rescans the root and replaces the held Status. On error the
// previous Status is kept.
func (m *Monitor) Refresh() error {
	s, err := Read(m.root)
	if err != nil {
		return err
	}
	m.current.Store(s)
	return nil
}
