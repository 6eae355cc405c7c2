package settlement

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTransfer() Transfer {
	return Transfer{
		FromWallet:   "0x52908400098527886E0F7030069857D2E4169EE7",
		ToWallet:     "0x8617E340B3D01FA5F11F306F4090FD50E238070D",
		TokenAddress: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		Amount:       "1500.00",
	}
}

func TestSimulator_SimulateTokenTransfer(t *testing.T) {
	s := NewSimulator()

	receipt, err := s.SimulateTokenTransfer(validTransfer())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(receipt.TransactionHash, "0x"))
	assert.Len(t, receipt.TransactionHash, 66)
}

func TestSimulator_DistinctHashes(t *testing.T) {
	s := NewSimulator()

	first, err := s.SimulateTokenTransfer(validTransfer())
	require.NoError(t, err)
	second, err := s.SimulateTokenTransfer(validTransfer())
	require.NoError(t, err)

	assert.NotEqual(t, first.TransactionHash, second.TransactionHash)
}

func TestSimulator_RejectsBadInput(t *testing.T) {
	s := NewSimulator()

	bad := validTransfer()
	bad.FromWallet = "not-a-wallet"
	_, err := s.SimulateTokenTransfer(bad)
	assert.Error(t, err)

	bad = validTransfer()
	bad.Amount = ""
	_, err = s.SimulateTokenTransfer(bad)
	assert.Error(t, err)
}
