package cps

import "sync/atomic"

// ClientStats contains statistics about client operations.
// All fields are safe for concurrent access.
//
// For Prometheus integration, register NewCollector(client) or set
// Config.Registerer.
type ClientStats struct {
	Requests          uint64 // Total requests attempted
	Errors            uint64 // Requests that returned an error
	CircuitRejections uint64 // Requests rejected by an open circuit breaker
	BytesSent         uint64 // Framed request bytes written
	BytesReceived     uint64 // Framed response bytes read
	Dials             uint64 // Connections established
	DialErrors        uint64 // Failed dial attempts
}

// clientStatsCollector provides internal methods for updating client stats.
type clientStatsCollector struct {
	stats ClientStats
}

func newClientStatsCollector() *clientStatsCollector {
	return &clientStatsCollector{}
}

func (c *clientStatsCollector) recordRequest(resp *Response, err error) {
	atomic.AddUint64(&c.stats.Requests, 1)
	if err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return
	}
	atomic.AddUint64(&c.stats.BytesSent, uint64(resp.Sent))
	atomic.AddUint64(&c.stats.BytesReceived, uint64(HeaderSize+len(resp.Body)))
}

func (c *clientStatsCollector) recordCircuitRejection() {
	atomic.AddUint64(&c.stats.CircuitRejections, 1)
}

func (c *clientStatsCollector) recordDial(err error) {
	if err != nil {
		atomic.AddUint64(&c.stats.DialErrors, 1)
		return
	}
	atomic.AddUint64(&c.stats.Dials, 1)
}

// snapshot returns a point-in-time copy of the stats.
func (c *clientStatsCollector) snapshot() ClientStats {
	return ClientStats{
		Requests:          atomic.LoadUint64(&c.stats.Requests),
		Errors:            atomic.LoadUint64(&c.stats.Errors),
		CircuitRejections: atomic.LoadUint64(&c.stats.CircuitRejections),
		BytesSent:         atomic.LoadUint64(&c.stats.BytesSent),
		BytesReceived:     atomic.LoadUint64(&c.stats.BytesReceived),
		Dials:             atomic.LoadUint64(&c.stats.Dials),
		DialErrors:        atomic.LoadUint64(&c.stats.DialErrors),
	}
}
