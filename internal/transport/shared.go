package transport

import (
	"net/http"
	"sync"
)

// All senders in the process share one HTTP transport so concurrent engines
// reuse a single connection pool. A reference count tracks the senders
// holding it; the last release closes idle connections and drops the handle
// so a later engine starts fresh.
var (
	sharedMu   sync.Mutex
	sharedRefs int
	shared     *http.Transport
)

func acquireShared() *http.Transport {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedRefs == 0 {
		shared = http.DefaultTransport.(*http.Transport).Clone()
	}
	sharedRefs++
	return shared
}

func releaseShared() {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedRefs == 0 {
		return
	}
	sharedRefs--
	if sharedRefs == 0 {
		shared.CloseIdleConnections()
		shared = nil
	}
}

func sharedRefCount() int {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	return sharedRefs
}
