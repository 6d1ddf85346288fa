package transport

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Pro7ech/secmpc/vector"
)

func TestMessagePassingSendRecvShares(t *testing.T) {
	net := NewMessagePassingNetwork(2, 4)

	send := vector.FromSlice([]int32{1, 2, 3, 4, 5, 6, 7, 8})
	recv := vector.New[int32](8)

	done := make(chan error, 1)
	go func() { done <- net[0].SendShares(send, 1, 8) }()
	require.NoError(t, net[1].RecvShares(-1, recv, 8))
	require.NoError(t, <-done)
	require.Equal(t, []int32{1, 2, 3, 4, 5, 6, 7, 8}, recv.BatchSpan())
}

func TestMessagePassingExchangeShares(t *testing.T) {
	net := NewMessagePassingNetwork(2, 2)

	a := vector.FromSlice([]int32{1, 2, 3})
	b := vector.FromSlice([]int32{10, 20, 30})
	recvA := vector.New[int32](3)
	recvB := vector.New[int32](3)

	done := make(chan error, 1)
	go func() { done <- net[0].ExchangeShares(a, recvA, 1, 3) }()
	require.NoError(t, net[1].ExchangeShares(b, recvB, -1, 3))
	require.NoError(t, <-done)

	require.Equal(t, []int32{10, 20, 30}, recvA.BatchSpan())
	require.Equal(t, []int32{1, 2, 3}, recvB.BatchSpan())
}
