package domain

import (
	"fmt"
	"strings"
)

// Default endpoint paths used when a participant entry leaves one unset.
const (
	DefaultStatusEndpoint      = "/status"
	DefaultSubscribeEndpoint   = "/subscribe"
	DefaultUnsubscribeEndpoint = "/unsubscribe"
	DefaultDeliveryEndpoint    = "/delivery"
	DefaultRequestEndpoint     = "/request"
	DefaultProtocol            = "http"
)

// Participant is one named counterpart of the exchange: where it listens and which paths it serves.
// Loaded once from the participant directory, never mutated afterwards.
type Participant struct {
	Ref                 string
	Host                string
	Port                int
	Protocol            string // http or https
	StatusEndpoint      string
	SubscribeEndpoint   string
	UnsubscribeEndpoint string
	DeliveryEndpoint    string
	RequestEndpoint     string
}

// WithDefaults fills empty protocol and endpoint paths and makes every path absolute.
func (p Participant) WithDefaults() Participant {
	p.Protocol = orDefault(p.Protocol, DefaultProtocol)
	p.StatusEndpoint = absPath(orDefault(p.StatusEndpoint, DefaultStatusEndpoint))
	p.SubscribeEndpoint = absPath(orDefault(p.SubscribeEndpoint, DefaultSubscribeEndpoint))
	p.UnsubscribeEndpoint = absPath(orDefault(p.UnsubscribeEndpoint, DefaultUnsubscribeEndpoint))
	p.DeliveryEndpoint = absPath(orDefault(p.DeliveryEndpoint, DefaultDeliveryEndpoint))
	p.RequestEndpoint = absPath(orDefault(p.RequestEndpoint, DefaultRequestEndpoint))
	return p
}

// Address is host:port, as used for listening.
func (p Participant) Address() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// URL joins the participant base address with an endpoint path.
func (p Participant) URL(endpoint string) string {
	return BuildURL(p.Protocol, p.Host, p.Port, endpoint)
}

// BuildURL renders protocol://host:port/path.
func BuildURL(protocol, host string, port int, endpoint string) string {
	return fmt.Sprintf("%s://%s:%d%s", orDefault(protocol, DefaultProtocol), host, port, absPath(endpoint))
}

func orDefault(v, d string) string {
	if strings.TrimSpace(v) == "" {
		return d
	}
	return v
}

func absPath(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}
