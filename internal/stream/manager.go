package stream

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Protocol selects how the client plays the stream back.
type Protocol string

const (
	ProtocolHLS    Protocol = "hls"
	ProtocolWebRTC Protocol = "webrtc"
)

var (
	ErrBadProtocol    = errors.New("stream: protocol must be hls or webrtc")
	ErrStreamNotReady = errors.New("stream: not ready before deadline")
)

// StartResult tells the client where to attach its player.
type StartResult struct {
	Path     string   `json:"path"`
	Protocol Protocol `json:"protocol"`
	URL      string   `json:"url"`
}

// Manager implements the start/stop/list contract on top of the control
// client: it registers a path, waits for MediaMTX to pull the source, and
// tears the path down again when the wait times out.
type Manager struct {
	Client       *Client
	HLSBase      string
	WebRTCBase   string
	PollInterval time.Duration
	MaxWait      time.Duration
}

func NewManager(client *Client, hlsBase, webrtcBase string) *Manager {
	return &Manager{
		Client:       client,
		HLSBase:      hlsBase,
		WebRTCBase:   webrtcBase,
		PollInterval: time.Second,
		MaxWait:      10 * time.Second,
	}
}

func (m *Manager) StartStream(ctx context.Context, rtspURL string, protocol Protocol) (StartResult, error) {
	if protocol != ProtocolHLS && protocol != ProtocolWebRTC {
		return StartResult{}, ErrBadProtocol
	}
	path := fmt.Sprintf("stream_%d", time.Now().UnixMilli())
	if err := m.Client.AddPathConfig(ctx, path, PathConfig{Source: rtspURL}); err != nil {
		return StartResult{}, err
	}

	if err := m.waitReady(ctx, path); err != nil {
		// Leave no half-configured path behind on timeout.
		_ = m.Client.DeletePathConfig(ctx, path)
		return StartResult{}, err
	}

	url := m.HLSBase + "/" + path + "/index.m3u8"
	if protocol == ProtocolWebRTC {
		url = m.WebRTCBase + "/" + path + "/whep"
	}
	return StartResult{Path: path, Protocol: protocol, URL: url}, nil
}

func (m *Manager) waitReady(ctx context.Context, path string) error {
	deadline := time.Now().Add(m.MaxWait)
	for time.Now().Before(deadline) {
		status, err := m.Client.GetActivePath(ctx, path)
		if err == nil && status.Ready {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.PollInterval):
		}
	}
	return ErrStreamNotReady
}

func (m *Manager) StopStream(ctx context.Context, path string) error {
	return m.Client.DeletePathConfig(ctx, path)
}

func (m *Manager) ListActivePaths(ctx context.Context) (PathList, error) {
	return m.Client.ListActivePaths(ctx)
}
