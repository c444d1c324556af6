package cps

import "slices"

// Servers provides the list of server addresses a Client can talk to.
type Servers interface {
	List() []string
}

// StaticServers is a fixed list of server addresses.
type StaticServers struct {
	addrs []string
}

var _ Servers = (*StaticServers)(nil)

func NewStaticServers(addrs ...string) *StaticServers {
	return &StaticServers{addrs: slices.Clone(addrs)}
}

func (s *StaticServers) List() []string {
	return s.addrs
}
