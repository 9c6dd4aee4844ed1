package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsConnectivity(t *testing.T) {
	opErr := &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}

	assert.True(t, IsConnectivity(driver.ErrBadConn))
	assert.True(t, IsConnectivity(fmt.Errorf("ping: %w", opErr)))
	assert.True(t, IsConnectivity(syscall.ECONNREFUSED))
	assert.True(t, IsConnectivity(context.DeadlineExceeded))
	assert.True(t, IsConnectivity(&net.DNSError{Err: "no such host", Name: "postgres"}))

	assert.False(t, IsConnectivity(nil))
	assert.False(t, IsConnectivity(errors.New("syntax error at or near \"TABLEE\"")))
	assert.False(t, IsConnectivity(context.Canceled))
}
