package session

import (
	"testing"

	"github.com/Domenick1991/skydispatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Lifecycle(t *testing.T) {
	st := NewStore()
	t1 := st.Issue(domain.Session{UserID: "u1", Username: "alice"})
	t2 := st.Issue(domain.Session{UserID: "u1", Username: "alice"})
	t3 := st.Issue(domain.Session{UserID: "u2", Username: "bob"})
	require.NotEqual(t, t1, t2)

	s, ok := st.Get(t1)
	require.True(t, ok)
	assert.Equal(t, "alice", s.Username)
	assert.True(t, st.IsOnline("u1"))
	assert.Equal(t, map[string]bool{"u1": true, "u2": true}, st.OnlineUserIDs())

	st.Delete(t3)
	assert.False(t, st.IsOnline("u2"))

	assert.Equal(t, 2, st.DeleteUser("u1"))
	_, ok = st.Get(t2)
	assert.False(t, ok)
	assert.Empty(t, st.OnlineUserIDs())
}
