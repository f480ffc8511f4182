package adapters

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/exitwatch/prover/internal/ports"
)

// privateKeySigner implements ports.Signer by signing an EIP-1559 dynamic
// fee transaction in-process, using go-ethereum's own transaction types
// rather than a hand-rolled RLP encoder.
type privateKeySigner struct {
	key     *ecdsa.PrivateKey
	address [20]byte
}

// NewPrivateKeySigner parses a hex-encoded secp256k1 private key
// (spec.md §6 txSignerPrivateKey). A zero-length key is rejected; callers
// wanting emulation-only deployment should pass a nil Signer instead.
func NewPrivateKeySigner(hexKey string) (ports.Signer, error) {
	key, err := crypto.HexToECDSA(trimHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parse signer private key: %w", err)
	}
	addr := crypto.PubkeyToAddress(key.PublicKey)
	return &privateKeySigner{key: key, address: addr}, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s[2:]
	}
	return s
}

func (s *privateKeySigner) Address() [20]byte { return s.address }

func (s *privateKeySigner) SignTransaction(
	ctx context.Context,
	call ports.CallMsg,
	nonce uint64,
	maxFeePerGas, maxPriorityFeePerGas uint64,
	gasLimit uint64,
	chainID uint64,
) ([]byte, [32]byte, error) {
	var to *common.Address
	if call.To != nil {
		addr := common.Address(*call.To)
		to = &addr
	}

	value := call.Value
	if value == nil {
		value = big.NewInt(0)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   new(big.Int).SetUint64(chainID),
		Nonce:     nonce,
		GasTipCap: new(big.Int).SetUint64(maxPriorityFeePerGas),
		GasFeeCap: new(big.Int).SetUint64(maxFeePerGas),
		Gas:       gasLimit,
		To:        to,
		Value:     value,
		Data:      call.Data,
	})

	signer := types.NewLondonSigner(new(big.Int).SetUint64(chainID))
	signedTx, err := types.SignTx(tx, signer, s.key)
	if err != nil {
		return nil, [32]byte{}, fmt.Errorf("sign transaction: %w", err)
	}

	raw, err := signedTx.MarshalBinary()
	if err != nil {
		return nil, [32]byte{}, fmt.Errorf("marshal signed transaction: %w", err)
	}
	return raw, [32]byte(signedTx.Hash()), nil
}
