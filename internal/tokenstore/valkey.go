// ABOUTME: Valkey-backed token tier shared between machines or containers
// ABOUTME: Stores the token under one key with an optional expiry

package tokenstore

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"

	"github.com/valkey-io/valkey-go"
)

// DefaultValkeyKey is the key the shared tier reads and writes.
const DefaultValkeyKey = "panel-municipal:token"

// ValkeyTier mirrors the token into a Valkey key.
type ValkeyTier struct {
	client valkey.Client
	key    string
	ttl    int64 // seconds; 0 keeps the key until deleted
}

// NewValkeyClient builds a client from a valkey:// or valkeys:// URI.
// Credentials in the URI user info are passed through.
func NewValkeyClient(uri string) (valkey.Client, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid valkey uri: %w", err)
	}

	username := ""
	password := ""
	if u.User != nil {
		username = u.User.Username()
		password, _ = u.User.Password()
	}

	options := valkey.ClientOption{
		InitAddress: []string{u.Host},
		Username:    username,
		Password:    password,
	}
	if u.Scheme == "valkeys" || u.Scheme == "rediss" {
		options.TLSConfig = &tls.Config{ServerName: u.Hostname()}
	}

	return valkey.NewClient(options)
}

// NewValkeyTier wraps an existing client. ttlSeconds of 0 disables expiry.
func NewValkeyTier(client valkey.Client, key string, ttlSeconds int64) *ValkeyTier {
	if key == "" {
		key = DefaultValkeyKey
	}
	return &ValkeyTier{client: client, key: key, ttl: ttlSeconds}
}

func (v *ValkeyTier) Name() string { return "valkey" }

func (v *ValkeyTier) Load(ctx context.Context) (string, error) {
	tok, err := v.client.Do(ctx, v.client.B().Get().Key(v.key).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("valkey get: %w", err)
	}
	return tok, nil
}

func (v *ValkeyTier) Save(ctx context.Context, token string) error {
	var cmd valkey.Completed
	if v.ttl > 0 {
		cmd = v.client.B().Set().Key(v.key).Value(token).ExSeconds(v.ttl).Build()
	} else {
		cmd = v.client.B().Set().Key(v.key).Value(token).Build()
	}
	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("valkey set: %w", err)
	}
	return nil
}

func (v *ValkeyTier) Delete(ctx context.Context) error {
	if err := v.client.Do(ctx, v.client.B().Del().Key(v.key).Build()).Error(); err != nil {
		return fmt.Errorf("valkey del: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (v *ValkeyTier) Close() {
	v.client.Close()
}
