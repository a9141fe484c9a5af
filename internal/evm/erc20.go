package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/quotient-labs/swap-engine/internal/common"
)

// ContractCaller is the read-only slice of ethclient.Client the resolvers
// need.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Call packs a method, issues eth_call and unpacks the outputs.
func Call(ctx context.Context, caller ContractCaller, contract ethcommon.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	ret, err := caller.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	if len(ret) == 0 {
		return nil, fmt.Errorf("%s: empty return data", method)
	}
	return parsed.Unpack(method, ret)
}

// TokenDecimals reads decimals() from an ERC-20 contract. Descriptors that
// omit decimals are resolved through here exactly once.
func TokenDecimals(ctx context.Context, caller ContractCaller, token ethcommon.Address) (uint8, error) {
	out, err := Call(ctx, caller, token, ERC20ABI, "decimals")
	if err != nil {
		return 0, common.WrapOp("TokenDecimals", common.ErrQuoteUnavailable, err)
	}
	dec, ok := out[0].(uint8)
	if !ok {
		return 0, common.WrapOp("TokenDecimals", common.ErrQuoteUnavailable,
			fmt.Errorf("unexpected return type %T", out[0]))
	}
	return dec, nil
}
