package remoteserver

import (
	"os"
	"strconv"
	"sync"

	"github.com/promisszn/soroban-debugger-sub000/internal/engine"
	"github.com/promisszn/soroban-debugger-sub000/internal/hostfacade"
	"github.com/promisszn/soroban-debugger-sub000/internal/instrindex"
	"github.com/promisszn/soroban-debugger-sub000/internal/netsnapshot"
	"github.com/promisszn/soroban-debugger-sub000/internal/wasmmodule"
)

// session is the per-connection state the original debug server called
// Session: an optional loaded engine plus an authenticated flag, one per
// accepted TCP connection so concurrent clients never share mutable state.
type session struct {
	mu            sync.Mutex
	authenticated bool

	host   hostfacade.Host
	handle hostfacade.ContractHandle
	eng    *engine.Engine
	loaded bool
}

func newSession(requireAuth bool) *session {
	return &session{authenticated: !requireAuth}
}

func (s *session) loadContract(path string) (size int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	img, err := wasmmodule.Parse(data)
	if err != nil {
		return 0, err
	}
	host := hostfacade.NewInMemoryHost()
	handle, err := host.RegisterContract(data, false)
	if err != nil {
		return 0, err
	}
	idx, err := instrindex.Build(img)
	if err != nil {
		idx = nil
	}

	s.mu.Lock()
	s.host = host
	s.handle = handle
	s.eng = engine.New(host, handle, engine.Options{Index: idx})
	s.loaded = true
	s.mu.Unlock()
	return len(data), nil
}

func (s *session) loadSnapshot(path string) (summary string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	snap, err := netsnapshot.Parse(data)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	if s.host != nil {
		for _, c := range snap.Contracts {
			for k, v := range c.Storage {
				if b, err := json.Marshal(v); err == nil {
					s.host.SetStorage(k, string(b))
				}
			}
		}
	}
	s.mu.Unlock()
	return summarizeSnapshot(snap), nil
}

func summarizeSnapshot(s *netsnapshot.Snapshot) string {
	return "ledger " + strconv.Itoa(int(s.Ledger.Sequence)) + ": " +
		strconv.Itoa(len(s.Accounts)) + " accounts, " +
		strconv.Itoa(len(s.Contracts)) + " contracts"
}
