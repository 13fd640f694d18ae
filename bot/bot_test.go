package bot

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionDefaults(t *testing.T) {
	b := &Bot{sessions: make(map[int64]*session)}

	assert.Equal(t, stateIdle, b.chatState(1))
	assert.Empty(t, b.lastQuery(1))
}

func TestSessionUpdates(t *testing.T) {
	b := &Bot{sessions: make(map[int64]*session)}

	b.setState(1, stateAwaitingFeedback)
	b.setLastQuery(1, "хочу боевик")

	assert.Equal(t, stateAwaitingFeedback, b.chatState(1))
	assert.Equal(t, "хочу боевик", b.lastQuery(1))

	// Other chats are untouched.
	assert.Equal(t, stateIdle, b.chatState(2))
}

// Updates arrive on separate goroutines, so state reads and writes for
// the same chat must hold the lock. Run with -race.
func TestSessionConcurrentAccess(t *testing.T) {
	b := &Bot{sessions: make(map[int64]*session)}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				b.setState(1, stateAwaitingQuery)
				b.setLastQuery(1, "что-нибудь на вечер")
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = b.chatState(1)
				_ = b.lastQuery(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, stateAwaitingQuery, b.chatState(1))
	assert.Equal(t, "что-нибудь на вечер", b.lastQuery(1))
}
