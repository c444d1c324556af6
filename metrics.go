package cps

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "cps_client"

// Collector exposes a Client's stats as Prometheus counters.
type Collector struct {
	client *Client

	requests          *prometheus.Desc
	errors            *prometheus.Desc
	circuitRejections *prometheus.Desc
	bytesSent         *prometheus.Desc
	bytesReceived     *prometheus.Desc
	dials             *prometheus.Desc
	dialErrors        *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

func NewCollector(client *Client) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(metricsNamespace, "", name), help, nil, nil)
	}
	return &Collector{
		client:            client,
		requests:          desc("requests_total", "Total number of requests attempted"),
		errors:            desc("errors_total", "Total number of requests that failed"),
		circuitRejections: desc("circuit_rejections_total", "Requests rejected by an open circuit breaker"),
		bytesSent:         desc("sent_bytes_total", "Framed request bytes written"),
		bytesReceived:     desc("received_bytes_total", "Framed response bytes read"),
		dials:             desc("dials_total", "Connections established"),
		dialErrors:        desc("dial_errors_total", "Failed dial attempts"),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.requests
	ch <- c.errors
	ch <- c.circuitRejections
	ch <- c.bytesSent
	ch <- c.bytesReceived
	ch <- c.dials
	ch <- c.dialErrors
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.client.Stats()
	counter := func(desc *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v))
	}
	counter(c.requests, s.Requests)
	counter(c.errors, s.Errors)
	counter(c.circuitRejections, s.CircuitRejections)
	counter(c.bytesSent, s.BytesSent)
	counter(c.bytesReceived, s.BytesReceived)
	counter(c.dials, s.Dials)
	counter(c.dialErrors, s.DialErrors)
}
