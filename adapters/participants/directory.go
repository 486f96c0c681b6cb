// Package participants loads the participant directory from YAML.
//
// The file maps each participant reference to its address and endpoint paths:
//
//	PY_TEST_PUBLISHER:
//	  host: 127.0.0.1
//	  port: 9090
//	  protocol: http
//	  status_endpoint: /status
//	  subscribe_endpoint: /subscribe
//	  unsubscribe_endpoint: /unsubscribe
//	  request_endpoint: /request
//	PY_TEST_SUBSCRIBER:
//	  host: 127.0.0.1
//	  port: 9091
//	  delivery_endpoint: /delivery
//
// Omitted protocol and endpoint paths take their defaults.
package participants

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"vdv736/domain"
	"vdv736/interfaces"
	"vdv736/service"
)

type entry struct {
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	Protocol            string `yaml:"protocol"`
	StatusEndpoint      string `yaml:"status_endpoint"`
	SubscribeEndpoint   string `yaml:"subscribe_endpoint"`
	UnsubscribeEndpoint string `yaml:"unsubscribe_endpoint"`
	DeliveryEndpoint    string `yaml:"delivery_endpoint"`
	RequestEndpoint     string `yaml:"request_endpoint"`
}

// Directory is an immutable participant directory.
type Directory struct {
	participants map[string]domain.Participant
}

var _ interfaces.ParticipantDirectory = (*Directory)(nil)

// Load reads the directory file at path.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read participants file %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("participants file %s: %w", path, err)
	}
	return d, nil
}

// Parse decodes a directory document. Every entry needs a host and a port in 1..65535.
func Parse(data []byte) (*Directory, error) {
	var raw map[string]entry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	participants := make(map[string]domain.Participant, len(raw))
	for ref, e := range raw {
		if strings.TrimSpace(e.Host) == "" {
			return nil, fmt.Errorf("participant %s: host is required", ref)
		}
		if e.Port <= 0 || e.Port > 65535 {
			return nil, fmt.Errorf("participant %s: invalid port %d", ref, e.Port)
		}
		protocol := strings.ToLower(e.Protocol)
		if protocol != "" && protocol != "http" && protocol != "https" {
			return nil, fmt.Errorf("participant %s: unsupported protocol %q", ref, e.Protocol)
		}
		participants[ref] = domain.Participant{
			Ref:                 ref,
			Host:                e.Host,
			Port:                e.Port,
			Protocol:            protocol,
			StatusEndpoint:      e.StatusEndpoint,
			SubscribeEndpoint:   e.SubscribeEndpoint,
			UnsubscribeEndpoint: e.UnsubscribeEndpoint,
			DeliveryEndpoint:    e.DeliveryEndpoint,
			RequestEndpoint:     e.RequestEndpoint,
		}.WithDefaults()
	}
	return &Directory{participants: participants}, nil
}

// Lookup returns the participant configured under ref.
func (d *Directory) Lookup(ref string) (domain.Participant, error) {
	p, ok := d.participants[ref]
	if !ok {
		return domain.Participant{}, service.NewEntityNotFoundError("unknown participant "+ref, nil)
	}
	return p, nil
}

// Refs lists every configured reference in sorted order.
func (d *Directory) Refs() []string {
	refs := make([]string, 0, len(d.participants))
	for ref := range d.participants {
		refs = append(refs, ref)
	}
	slices.Sort(refs)
	return refs
}
