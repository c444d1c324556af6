package cps

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSelectServer(t *testing.T) {
	t.Run("no servers", func(t *testing.T) {
		_, err := DefaultSelectServer("books", nil)
		assert.ErrorIs(t, err, ErrNoServers)
	})

	t.Run("single server", func(t *testing.T) {
		addr, err := DefaultSelectServer("books", []string{"only:5550"})
		require.NoError(t, err)
		assert.Equal(t, "only:5550", addr)
	})

	t.Run("stable for a storage", func(t *testing.T) {
		servers := []string{"a:5550", "b:5550", "c:5550", "d:5550"}
		first, err := DefaultSelectServer("books", servers)
		require.NoError(t, err)
		for range 10 {
			addr, err := DefaultSelectServer("books", servers)
			require.NoError(t, err)
			assert.Equal(t, first, addr)
		}
		assert.Contains(t, servers, first)
	})

	t.Run("spreads storages", func(t *testing.T) {
		servers := []string{"a:5550", "b:5550", "c:5550"}
		seen := make(map[string]int)
		for i := range 300 {
			addr, err := DefaultSelectServer(fmt.Sprintf("storage-%d", i), servers)
			require.NoError(t, err)
			seen[addr]++
		}
		assert.Len(t, seen, len(servers))
		for addr, n := range seen {
			assert.Greater(t, n, 50, "server %s is underused", addr)
		}
	})
}

func TestStaticServers(t *testing.T) {
	addrs := []string{"a:5550", "b:5550"}
	servers := NewStaticServers(addrs...)

	addrs[0] = "changed:1"
	assert.Equal(t, []string{"a:5550", "b:5550"}, servers.List())
}
