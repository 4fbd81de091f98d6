package live

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAssignsUniqueIDs(t *testing.T) {
	r := newRegistry(clockwork.NewFakeClock())

	a := r.register(&fakeTransport{})
	b := r.register(&fakeTransport{})

	assert.NotEqual(t, a.id, b.id)
	assert.Equal(t, 2, r.size())
	assert.Same(t, a, r.get(a.id))
	assert.Nil(t, r.get("missing"))
}

func TestRegistryFindByUsernameIsCaseInsensitive(t *testing.T) {
	r := newRegistry(clockwork.NewFakeClock())

	conn := r.register(&fakeTransport{})
	conn.username = "Alice"
	r.register(&fakeTransport{})

	assert.Same(t, conn, r.findByUsername("alice"))
	assert.Same(t, conn, r.findByUsername("ALICE"))
	assert.Nil(t, r.findByUsername("bob"))

	// Unidentified connections never match, not even on the empty name.
	assert.Nil(t, r.findByUsername(""))
}

func TestRegistryTouchAdvancesLiveness(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r := newRegistry(clock)

	conn := r.register(&fakeTransport{})
	registered := conn.lastActivity

	clock.Advance(time.Minute)
	r.touch(conn.id)

	assert.Equal(t, time.Minute, conn.lastActivity.Sub(registered))
	assert.Equal(t, registered, conn.connectedAt)

	// Touching an unknown id is a no-op.
	r.touch("missing")
}

func TestRegistryRemovePreservesOrder(t *testing.T) {
	r := newRegistry(clockwork.NewFakeClock())

	a := r.register(&fakeTransport{})
	b := r.register(&fakeTransport{})
	c := r.register(&fakeTransport{})

	removed := r.remove(b.id)
	require.Same(t, b, removed)
	assert.Nil(t, r.remove(b.id))

	all := r.all()
	require.Len(t, all, 2)
	assert.Same(t, a, all[0])
	assert.Same(t, c, all[1])
}

func TestRegistryUsersListsIdentifiedOnly(t *testing.T) {
	r := newRegistry(clockwork.NewFakeClock())

	alice := r.register(&fakeTransport{})
	alice.username = "alice"
	r.register(&fakeTransport{})
	bob := r.register(&fakeTransport{})
	bob.username = "bob"
	bob.joinedSessionID = "sess-1"
	bob.isHost = true

	users := r.users()
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
	assert.True(t, users[1].IsJamSessionHost)
	assert.Equal(t, "sess-1", users[1].JoinedJamSessionID)
}
