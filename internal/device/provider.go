package device

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rryowa/candidate_session/internal/models"
	"github.com/rryowa/candidate_session/internal/storage"
)

const unknownDeviceName = "unknown-device"

// Provider hands out the device triple attached to every auth request. The
// device id is generated once and persisted in the preference store; name and
// IP are recomputed per call.
type Provider struct {
	prefs        storage.KeyValueStore
	nameOverride string
	log          *zap.SugaredLogger

	mu       sync.Mutex
	deviceID string

	hostname      func() (string, error)
	interfaceAddr func() ([]net.Addr, error)
}

func NewProvider(prefs storage.KeyValueStore, nameOverride string, log *zap.SugaredLogger) *Provider {
	return &Provider{
		prefs:         prefs,
		nameOverride:  nameOverride,
		log:           log,
		hostname:      os.Hostname,
		interfaceAddr: net.InterfaceAddrs,
	}
}

func (p *Provider) Metadata(ctx context.Context) (models.DeviceMetadata, error) {
	if err := ctx.Err(); err != nil {
		return models.DeviceMetadata{}, err
	}

	return models.DeviceMetadata{
		DeviceID:   p.id(ctx),
		DeviceName: p.name(),
		IPAddress:  p.ipAddress(),
	}, nil
}

func (p *Provider) id(ctx context.Context) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.deviceID != "" {
		return p.deviceID
	}

	stored, err := p.prefs.Get(ctx, models.DeviceIDPreferenceKey)
	if err == nil && stored != "" {
		p.deviceID = stored
		return stored
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		p.log.Debugw("device id read failed, generating a new one", "error", err)
	}

	generated := uuid.NewString()
	if err := p.prefs.Set(ctx, models.DeviceIDPreferenceKey, generated); err != nil {
		p.log.Errorw("failed to persist device id", "error", err)
	}
	p.deviceID = generated
	return generated
}

func (p *Provider) name() string {
	if p.nameOverride != "" {
		return p.nameOverride
	}
	host, err := p.hostname()
	if err != nil || host == "" {
		return unknownDeviceName
	}
	return host
}

func (p *Provider) ipAddress() string {
	addrs, err := p.interfaceAddr()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if v4 := ipNet.IP.To4(); v4 != nil {
			return v4.String()
		}
	}
	return ""
}
