package main

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authapi/internal/config"
	"authapi/internal/services"
)

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	for _, sub := range []string{"serve", "migrate", "prune-sessions"} {
		assert.Contains(t, buf.String(), sub, "help missing %q command", sub)
	}
}

func TestPruneSessions_MemoryDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("MAIL_PROVIDER", "log")
	t.Setenv("ENVIRONMENT", "development")

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"prune-sessions"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Deleted 0 expired sessions")
}

func TestMigrate_MemoryDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("MAIL_PROVIDER", "log")
	t.Setenv("ENVIRONMENT", "development")

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"migrate"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Nothing to migrate")
}

func TestNewMailer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	assert.IsType(t, &services.MailgunSender{}, newMailer(&config.Config{MailProvider: config.MailProviderMailgun}, logger))
	assert.IsType(t, &services.SMTPSender{}, newMailer(&config.Config{MailProvider: config.MailProviderSMTP}, logger))
	assert.IsType(t, &services.LogSender{}, newMailer(&config.Config{MailProvider: config.MailProviderLog}, logger))
}
