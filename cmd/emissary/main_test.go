package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emissary-ai/emissary/internal/config"
)

func TestNotifyConfig_EnabledPassesCredentials(t *testing.T) {
	cfg := &config.Config{}
	cfg.Notify.Enabled = true
	cfg.Notify.User = "u1"
	cfg.Notify.Token = "t1"

	nc := notifyConfig(cfg)
	assert.Equal(t, "u1", nc.User)
	assert.Equal(t, "t1", nc.Token)
}

func TestNotifyConfig_DisabledWithholdsCredentials(t *testing.T) {
	cfg := &config.Config{}
	cfg.Notify.Enabled = false
	cfg.Notify.User = "u1"
	cfg.Notify.Token = "t1"

	// Disabled must win over present credentials.
	nc := notifyConfig(cfg)
	assert.Empty(t, nc.User)
	assert.Empty(t, nc.Token)
}
