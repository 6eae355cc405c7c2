package settlement

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Simulator stands in for on-chain settlement. It produces receipts shaped
// like real transactions without touching a chain.
type Simulator struct{}

func NewSimulator() *Simulator {
	return &Simulator{}
}

type Transfer struct {
	FromWallet   string
	ToWallet     string
	TokenAddress string
	Amount       string
}

type Receipt struct {
	TransactionHash string
}

func (t Transfer) validate() error {
	if !common.IsHexAddress(t.FromWallet) {
		return errors.Errorf("invalid from wallet: %s", t.FromWallet)
	}
	if !common.IsHexAddress(t.ToWallet) {
		return errors.Errorf("invalid to wallet: %s", t.ToWallet)
	}
	if !common.IsHexAddress(t.TokenAddress) {
		return errors.Errorf("invalid token address: %s", t.TokenAddress)
	}
	if t.Amount == "" {
		return errors.New("empty amount")
	}
	return nil
}

// SimulateTokenTransfer returns a keccak hash over the transfer parameters
// and a nanosecond nonce, so repeated transfers between the same parties get
// distinct hashes.
func (s *Simulator) SimulateTokenTransfer(transfer Transfer) (*Receipt, error) {
	if err := transfer.validate(); err != nil {
		return nil, errors.Wrap(err, "simulate token transfer")
	}

	payload := fmt.Sprintf("%s|%s|%s|%s|%d",
		strings.ToLower(transfer.FromWallet),
		strings.ToLower(transfer.ToWallet),
		strings.ToLower(transfer.TokenAddress),
		transfer.Amount,
		time.Now().UnixNano(),
	)

	hash := crypto.Keccak256Hash([]byte(payload))

	return &Receipt{TransactionHash: hash.Hex()}, nil
}
