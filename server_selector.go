package cps

import "github.com/pior/cps/internal"

// SelectServerFunc picks the server for a routing key from the current
// server list.
type SelectServerFunc func(key string, servers []string) (string, error)

// DefaultSelectServer uses Jump Hash over xxh3 of the key. The Client routes
// by storage name, so every request for one storage, including the steps of
// a transaction, reaches the same server.
// For a single server, it returns that server directly.
func DefaultSelectServer(key string, servers []string) (string, error) {
	switch len(servers) {
	case 0:
		return "", ErrNoServers
	case 1:
		return servers[0], nil
	}
	return servers[internal.Bucket(key, len(servers))], nil
}
