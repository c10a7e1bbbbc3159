package result

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/tinybrain/digitctl/pkg/wire"
)

// Mux serves the two readback commands over the single outbound byte
// channel. At most one response is transmitting at a time.
type Mux struct {
	store *Store
	out   io.Writer
	lock  sync.Mutex
}

// NewMux creates a mux reading from store and writing to out.
func NewMux(store *Store, out io.Writer) *Mux {
	return &Mux{store: store, out: out}
}

// HandleCommand serves one command byte.
func (m *Mux) HandleCommand(cmd byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	switch cmd {
	case wire.CmdReadDigit:
		class, _ := m.store.Snapshot()
		_, err := m.out.Write([]byte{byte(class) & 0x0F})
		return err
	case wire.CmdReadScores:
		_, scores := m.store.Snapshot()
		return binary.Write(m.out, binary.LittleEndian, scores)
	}
	return fmt.Errorf("unknown readback command 0x%02X", cmd)
}
