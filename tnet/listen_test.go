package tnet

import (
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListen(t *testing.T) {
	for _, addr := range []string{"0", "localhost:0", "tcp:127.0.0.1:0"} {
		l, err := Listen(addr)
		require.NoError(t, err, addr)
		require.Equal(t, "tcp", l.Addr().Network())
		host, _, err := net.SplitHostPort(l.Addr().String())
		require.NoError(t, err)
		require.True(t, net.ParseIP(host).IsLoopback(), addr)
		require.NoError(t, l.Close())
	}

	path := filepath.Join(t.TempDir(), "multikey.sock")
	l, err := Listen("unix:" + path)
	require.NoError(t, err)
	require.Equal(t, "unix", l.Addr().Network())
	require.Equal(t, path, l.Addr().String())
	require.NoError(t, l.Close())
}

func TestListenBusy(t *testing.T) {
	l := ListenLocal()
	defer l.Close()

	_, err := Listen(l.Addr().String())
	require.Error(t, err)
	require.Contains(t, err.Error(), "listening on "+l.Addr().String())
}
