// Package wake notifies the daemon when the machine resumes from sleep, so
// battery state is rescanned right away instead of on the next tick.
package wake

import (
	"log/slog"

	"github.com/godbus/dbus/v5"
)

const (
	loginManager     = "org.freedesktop.login1.Manager"
	prepareForSleep  = loginManager + ".PrepareForSleep"
	prepareForHalt   = loginManager + ".PrepareForShutdown"
	signalBufferSize = 16
)

// Monitor listens for systemd-logind PrepareForSleep signals.
type Monitor struct {
	conn *dbus.Conn
	done chan struct{}
	wake chan struct{}
	log  *slog.Logger
}

// NewMonitor creates a new wake monitor connected to the system bus.
func NewMonitor(logger *slog.Logger) (*Monitor, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, err
	}

	for _, member := range []string{"PrepareForSleep", "PrepareForShutdown"} {
		err = conn.AddMatchSignal(
			dbus.WithMatchInterface(loginManager),
			dbus.WithMatchMember(member),
		)
		if err != nil {
			return nil, err
		}
	}

	m := newMonitor(logger)
	m.conn = conn
	ch := make(chan *dbus.Signal, signalBufferSize)
	conn.Signal(ch)
	go func() {
		defer conn.RemoveSignal(ch)
		m.listen(ch)
	}()
	return m, nil
}

func newMonitor(logger *slog.Logger) *Monitor {
	return &Monitor{
		done: make(chan struct{}),
		wake: make(chan struct{}, 1),
		log:  logger,
	}
}

// Wake returns a channel that receives a value each time the system wakes from sleep.
func (m *Monitor) Wake() <-chan struct{} {
	return m.wake
}

// Close stops the monitor.
func (m *Monitor) Close() {
	close(m.done)
}

func (m *Monitor) listen(ch <-chan *dbus.Signal) {
	for {
		select {
		case sig, ok := <-ch:
			if !ok {
				return
			}
			m.handle(sig)
		case <-m.done:
			return
		}
	}
}

func (m *Monitor) handle(sig *dbus.Signal) {
	if sig == nil || len(sig.Body) < 1 {
		return
	}
	active, ok := sig.Body[0].(bool)
	if !ok {
		return
	}

	switch sig.Name {
	case prepareForHalt:
		if active {
			m.log.Info("system preparing for shutdown/hibernate")
		}
	case prepareForSleep:
		if active {
			m.log.Info("system going to sleep")
			return
		}
		m.log.Info("system woke up")
		select {
		case m.wake <- struct{}{}:
		default:
		}
	}
}
