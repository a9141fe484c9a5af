// Package evm holds the shared EVM surface: the contract address book,
// parsed ABIs, ERC-20 reads and the transaction submitter.
package evm

import (
	"fmt"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/quotient-labs/swap-engine/internal/common"
	"github.com/quotient-labs/swap-engine/internal/domain"
)

// Uniswap deployments. V3 contracts are registered on mainnet only; the V2
// periphery also exists on Sepolia.
var (
	v2Factories = map[domain.ChainID]ethcommon.Address{
		domain.EthereumMainnet: ethcommon.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f"),
		domain.Sepolia:         ethcommon.HexToAddress("0xF62c03E08ada871A0bEb309762E260a7a6a880E6"),
	}

	v2Routers = map[domain.ChainID]ethcommon.Address{
		domain.EthereumMainnet: ethcommon.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"),
		domain.Sepolia:         ethcommon.HexToAddress("0xeE567Fe1712Faf6149d80dA1E6934E354124CfE3"),
	}

	v3Factories = map[domain.ChainID]ethcommon.Address{
		domain.EthereumMainnet: ethcommon.HexToAddress("0x1F98431c8aD98523631AE4a59f267346ea31F984"),
	}

	v3Quoters = map[domain.ChainID]ethcommon.Address{
		domain.EthereumMainnet: ethcommon.HexToAddress("0xb27308f9F90D607463bb33eA1BeBb41C27CE5AB6"),
	}

	v3SwapRouters = map[domain.ChainID]ethcommon.Address{
		domain.EthereumMainnet: ethcommon.HexToAddress("0xE592427A0AEce92De3Edee1F18E0157C05861564"),
	}

	wrappedNative = map[domain.ChainID]ethcommon.Address{
		domain.EthereumMainnet: ethcommon.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
		domain.Sepolia:         ethcommon.HexToAddress("0xfFf9976782d46CC05630D1f6eBAb18b2324d6B14"),
	}

	// CREATE2 init code hashes for deterministic pool derivation.
	V2PairInitCodeHash = ethcommon.HexToHash("0x96e8ac4277198ff8b6f785478aa9a39f403cb768dd02cbee326c3e7da348845f")
	V3PoolInitCodeHash = ethcommon.HexToHash("0xe34f199b19b2b4f47f68442619d555527d244f78a3297ea89325f843f87b8b54")
)

func lookup(m map[domain.ChainID]ethcommon.Address, chain domain.ChainID, what string) (ethcommon.Address, error) {
	addr, ok := m[chain]
	if !ok {
		return ethcommon.Address{}, common.WrapOp(what, common.ErrConfiguration,
			fmt.Errorf("not deployed on chain %s", chain))
	}
	return addr, nil
}

func V2Factory(chain domain.ChainID) (ethcommon.Address, error) {
	return lookup(v2Factories, chain, "V2Factory")
}

func V2Router(chain domain.ChainID) (ethcommon.Address, error) {
	return lookup(v2Routers, chain, "V2Router")
}

func V3Factory(chain domain.ChainID) (ethcommon.Address, error) {
	return lookup(v3Factories, chain, "V3Factory")
}

func V3Quoter(chain domain.ChainID) (ethcommon.Address, error) {
	return lookup(v3Quoters, chain, "V3Quoter")
}

func V3SwapRouter(chain domain.ChainID) (ethcommon.Address, error) {
	return lookup(v3SwapRouters, chain, "V3SwapRouter")
}

func WrappedNative(chain domain.ChainID) (ethcommon.Address, error) {
	return lookup(wrappedNative, chain, "WrappedNative")
}
