package dbus

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"

	godbus "github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/cptspacemanspiff/batstat/internal/config"
	"github.com/cptspacemanspiff/batstat/internal/powersupply"
)

const (
	BusName   = "org.batstat.PowerStatus"
	ObjPath   = "/org/batstat/PowerStatus"
	IfaceName = "org.batstat.PowerStatus"
)

const introspectXML = `
<node>
  <interface name="` + IfaceName + `">
    <method name="GetPercentage">
      <arg direction="out" type="u" name="percent"/>
      <arg direction="out" type="b" name="known"/>
    </method>
    <method name="GetStatus">
      <arg direction="out" type="s" name="json"/>
    </method>
    <method name="Refresh">
    </method>
    <signal name="Changed">
      <arg type="u" name="percent"/>
      <arg type="b" name="known"/>
    </signal>
  </interface>
` + introspect.IntrospectDataString + `
</node>`

// Source is the battery state the service publishes.
type Source interface {
	Current() *powersupply.Status
}

type reading struct {
	percent uint32
	known   bool
}

// Service exposes the combined battery reading over D-Bus.
type Service struct {
	src Source

	requests chan chan<- error

	mu        sync.Mutex
	conn      *godbus.Conn
	announced *reading
}

// NewService creates a new D-Bus service.
func NewService(src Source) *Service {
	return &Service{
		src:      src,
		requests: make(chan chan<- error),
	}
}

// RefreshRequests delivers client Refresh calls. The receiver performs the
// refresh and sends its result, nil or not, on the received channel.
func (s *Service) RefreshRequests() <-chan chan<- error {
	return s.requests
}

// Export registers the service on the session or system bus.
func (s *Service) Export(bus string) (*godbus.Conn, error) {
	var (
		conn *godbus.Conn
		err  error
	)
	switch bus {
	case config.BusSystem:
		conn, err = godbus.SystemBus()
	default:
		conn, err = godbus.SessionBus()
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s bus: %w", bus, err)
	}

	conn.Export(s, ObjPath, IfaceName)
	conn.Export(introspect.Introspectable(introspectXML), ObjPath, "org.freedesktop.DBus.Introspectable")

	reply, err := conn.RequestName(BusName, godbus.NameFlagDoNotQueue)
	if err != nil {
		return nil, fmt.Errorf("request name: %w", err)
	}
	if reply != godbus.RequestNameReplyPrimaryOwner {
		return nil, fmt.Errorf("name %s already taken", BusName)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	return conn, nil
}

func currentReading(st *powersupply.Status) reading {
	pct, ok := st.Percent()
	if !ok {
		return reading{}
	}
	if pct > math.MaxUint32 {
		pct = math.MaxUint32
	}
	return reading{percent: uint32(pct), known: true}
}

// GetPercentage returns the combined charge level and whether it is known.
func (s *Service) GetPercentage() (uint32, bool, *godbus.Error) {
	r := currentReading(s.src.Current())
	return r.percent, r.known, nil
}

// GetStatus returns the combined reading and the per-battery records as JSON.
func (s *Service) GetStatus() (string, *godbus.Error) {
	data, err := json.Marshal(s.src.Current())
	if err != nil {
		return "", godbus.MakeFailedError(err)
	}
	return string(data), nil
}

// Refresh asks the polling loop for an immediate rescan and waits for it.
func (s *Service) Refresh() *godbus.Error {
	result := make(chan error, 1)
	s.requests <- result
	if err := <-result; err != nil {
		return godbus.MakeFailedError(err)
	}
	return nil
}

// Announce emits Changed if the reading differs from the last one emitted.
// It reports whether the reading changed.
func (s *Service) Announce() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := currentReading(s.src.Current())
	if s.announced != nil && *s.announced == r {
		return false, nil
	}
	s.announced = &r
	if s.conn == nil {
		return true, nil
	}
	if err := s.conn.Emit(ObjPath, IfaceName+".Changed", r.percent, r.known); err != nil {
		return true, fmt.Errorf("emit changed: %w", err)
	}
	return true, nil
}
