package config

import (
	"fmt"
	"os"

	"github.com/quotient-labs/swap-engine/internal/common"
	"github.com/quotient-labs/swap-engine/internal/domain"
)

const defaultRaydiumCatalogURL = "https://api.raydium.io/v2/sdk/liquidity/mainnet.json"

// ChainConfig carries the per-chain RPC surface and signing keys. EVM chains
// go through Infura; Solana takes a full endpoint URL.
type ChainConfig struct {
	InfuraAPIKey  string
	EVMPrivateKey string // hex, with or without 0x prefix

	SolanaRPCURL     string
	SolanaPrivateKey string // base58

	RaydiumCatalogURL string
}

func (c *ChainConfig) Load() error {
	c.InfuraAPIKey = os.Getenv("INFURA_API_KEY")
	c.EVMPrivateKey = os.Getenv("EVM_PRIVATE_KEY")
	c.SolanaRPCURL = os.Getenv("SOLANA_RPC_URL")
	c.SolanaPrivateKey = os.Getenv("SOLANA_PRIVATE_KEY")
	c.RaydiumCatalogURL = getEnvOrDefault("RAYDIUM_CATALOG_URL", defaultRaydiumCatalogURL)
	return nil
}

func (c *ChainConfig) Validate() error {
	// Keys are validated lazily: a quote-only deployment needs no signer.
	return nil
}

// EVMEndpoint maps a chain identifier to its RPC endpoint.
func (c *ChainConfig) EVMEndpoint(chain domain.ChainID) (string, error) {
	if c.InfuraAPIKey == "" {
		return "", common.WrapOp("EVMEndpoint", common.ErrConfiguration,
			fmt.Errorf("INFURA_API_KEY is not set"))
	}
	switch chain {
	case domain.EthereumMainnet:
		return "https://mainnet.infura.io/v3/" + c.InfuraAPIKey, nil
	case domain.Sepolia:
		return "https://sepolia.infura.io/v3/" + c.InfuraAPIKey, nil
	case domain.ArbitrumOne:
		return "https://arbitrum-mainnet.infura.io/v3/" + c.InfuraAPIKey, nil
	default:
		return "", common.WrapOp("EVMEndpoint", common.ErrConfiguration,
			fmt.Errorf("no endpoint registered for chain %s", chain))
	}
}
