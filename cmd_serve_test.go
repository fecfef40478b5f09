package main

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeExitError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"nil", nil, false},
		{"signal", fmt.Errorf("%w: %s", errInterrupted, "interrupt"), false},
		{"server closed", http.ErrServerClosed, false},
		{"listen failure", errors.New("listen tcp :8080: bind: address already in use"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := serveExitError(tt.err)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestServeExitErrorOnBusyPort(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	server := &http.Server{Addr: busy.Addr().String()}
	errChannel := make(chan error, 1)
	go func() { errChannel <- server.ListenAndServe() }()

	assert.Error(t, serveExitError(<-errChannel))
}
