package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"gosuda.org/portal/portal/core/cryptoops"
	"gosuda.org/portal/sdk"
)

// relayServers drops blank entries left by an empty RELAY env or stray commas.
func relayServers(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// relayCredential returns a fresh identity, or the one encoded in key.
func relayCredential(key string) (*cryptoops.Credential, error) {
	if key == "" {
		return sdk.NewCredential(), nil
	}
	raw, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("decode cred key: %w", err)
	}
	cred, err := cryptoops.NewCredentialFromPrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("new credential from private key: %w", err)
	}
	return cred, nil
}

// relayEndpoint publishes the game handler through portal relay servers.
type relayEndpoint struct {
	client *sdk.RDClient
	ln     net.Listener
}

func openRelay(servers []string, name, credKey string) (*relayEndpoint, error) {
	cred, err := relayCredential(credKey)
	if err != nil {
		return nil, err
	}
	client, err := sdk.NewClient(sdk.WithBootstrapServers(servers))
	if err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}
	ln, err := client.Listen(cred, name, []string{"http/1.1"})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("listen: %w", err)
	}
	log.Info().Strs("servers", servers).Str("name", name).Msg("[mafia] relay listener enabled")
	return &relayEndpoint{client: client, ln: ln}, nil
}

// serve blocks until the listener closes. Errors after ctx is done are
// part of shutdown and not reported.
func (r *relayEndpoint) serve(ctx context.Context, h http.Handler) {
	err := http.Serve(r.ln, h)
	if err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Error().Err(err).Msg("[mafia] relay http error")
	}
}

func (r *relayEndpoint) Close() {
	_ = r.ln.Close()
	_ = r.client.Close()
}
