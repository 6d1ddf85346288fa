package transport

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Pro7ech/secmpc/vector"
)

func TestLocalSendRecvShares(t *testing.T) {
	net := NewLocalNetwork(2)

	send := vector.FromSlice([]int32{1, 2, 3, 4})
	recv := vector.New[int32](4)

	done := make(chan error, 1)
	go func() {
		done <- net[0].SendShares(send, 1, 4)
	}()
	require.NoError(t, net[1].RecvShares(-1, recv, 4))
	require.NoError(t, <-done)
	require.Equal(t, []int32{1, 2, 3, 4}, recv.BatchSpan())
}

func TestLocalExchangeShares(t *testing.T) {
	net := NewLocalNetwork(2)

	a := vector.FromSlice([]int32{1, 2})
	b := vector.FromSlice([]int32{10, 20})
	recvA := vector.New[int32](2)
	recvB := vector.New[int32](2)

	done := make(chan error, 1)
	go func() {
		done <- net[0].ExchangeShares(a, recvA, 1, 2)
	}()
	require.NoError(t, net[1].ExchangeShares(b, recvB, -1, 2))
	require.NoError(t, <-done)

	require.Equal(t, []int32{10, 20}, recvA.BatchSpan())
	require.Equal(t, []int32{1, 2}, recvB.BatchSpan())
}

func TestLocalBytesSent(t *testing.T) {
	net := NewLocalNetwork(2)
	send := vector.FromSlice([]int32{1, 2, 3, 4})
	recv := vector.New[int32](4)

	done := make(chan error, 1)
	go func() { done <- net[0].SendShares(send, 1, 4) }()
	require.NoError(t, net[1].RecvShares(-1, recv, 4))
	require.NoError(t, <-done)

	require.Equal(t, uint64(16), net[0].BytesSent())
}

func TestNullCommunicatorLoopsBack(t *testing.T) {
	n := &Null{}
	send := vector.FromSlice([]int32{5, 6, 7})
	recv := vector.New[int32](3)
	require.NoError(t, n.SendShares(send, 0, 3))
	require.NoError(t, n.RecvShares(0, recv, 3))
	require.Equal(t, []int32{5, 6, 7}, recv.BatchSpan())
}
