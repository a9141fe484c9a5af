// Package chains owns the process-wide RPC clients and signing identities.
// Exactly one client exists per chain for the process lifetime; callers never
// construct clients directly.
package chains

import (
	"crypto/ecdsa"
	"fmt"
	"strings"
	"sync"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/quotient-labs/swap-engine/internal/common"
	"github.com/quotient-labs/swap-engine/internal/config"
	"github.com/quotient-labs/swap-engine/internal/domain"
)

// EVMSigner is a single-key signing identity on an EVM chain.
type EVMSigner struct {
	Key     *ecdsa.PrivateKey
	Address ethcommon.Address
}

// SolanaWallet is the holder key on Solana.
type SolanaWallet struct {
	Key       solana.PrivateKey
	PublicKey solana.PublicKey
}

// ConnectionCache lazily creates and memoizes one RPC client and one signing
// identity per chain. Construction happens under the mutex, so a concurrent
// first use still yields a single instance.
type ConnectionCache struct {
	cfg *config.ChainConfig
	log *common.ServiceLogger

	mu         sync.Mutex
	evmClients map[domain.ChainID]*ethclient.Client
	evmSigners map[domain.ChainID]*EVMSigner
	solClient  *rpc.Client
	solWallet  *SolanaWallet
}

func NewConnectionCache(cfg *config.ChainConfig) *ConnectionCache {
	return &ConnectionCache{
		cfg:        cfg,
		log:        common.NewServiceLogger("connection-cache"),
		evmClients: make(map[domain.ChainID]*ethclient.Client),
		evmSigners: make(map[domain.ChainID]*EVMSigner),
	}
}

// EVM returns the memoized client for an EVM chain, dialing it on first use.
func (c *ConnectionCache) EVM(chain domain.ChainID) (*ethclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.evmClients[chain]; ok {
		return client, nil
	}

	endpoint, err := c.cfg.EVMEndpoint(chain)
	if err != nil {
		return nil, err
	}
	client, err := ethclient.Dial(endpoint)
	if err != nil {
		return nil, common.WrapOp("EVM", common.ErrConfiguration, err)
	}
	c.evmClients[chain] = client
	c.log.Info().Str("chain", chain.String()).Msg("evm client created")
	return client, nil
}

// EVMSigner returns the signing identity for an EVM chain, derived once from
// the configured private key.
func (c *ConnectionCache) EVMSigner(chain domain.ChainID) (*EVMSigner, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if signer, ok := c.evmSigners[chain]; ok {
		return signer, nil
	}

	raw := strings.TrimPrefix(c.cfg.EVMPrivateKey, "0x")
	if raw == "" {
		return nil, common.WrapOp("EVMSigner", common.ErrConfiguration,
			fmt.Errorf("EVM_PRIVATE_KEY is not set"))
	}
	key, err := crypto.HexToECDSA(raw)
	if err != nil {
		return nil, common.WrapOp("EVMSigner", common.ErrConfiguration, err)
	}
	signer := &EVMSigner{
		Key:     key,
		Address: crypto.PubkeyToAddress(key.PublicKey),
	}
	c.evmSigners[chain] = signer
	return signer, nil
}

// Solana returns the memoized Solana RPC client.
func (c *ConnectionCache) Solana() (*rpc.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.solClient != nil {
		return c.solClient, nil
	}
	if c.cfg.SolanaRPCURL == "" {
		return nil, common.WrapOp("Solana", common.ErrConfiguration,
			fmt.Errorf("SOLANA_RPC_URL is not set"))
	}
	c.solClient = rpc.New(c.cfg.SolanaRPCURL)
	c.log.Info().Str("chain", domain.SolanaMainnet.String()).Msg("solana client created")
	return c.solClient, nil
}

// SolanaWallet returns the holder key, decoded once from base58.
func (c *ConnectionCache) SolanaWallet() (*SolanaWallet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.solWallet != nil {
		return c.solWallet, nil
	}
	if c.cfg.SolanaPrivateKey == "" {
		return nil, common.WrapOp("SolanaWallet", common.ErrConfiguration,
			fmt.Errorf("SOLANA_PRIVATE_KEY is not set"))
	}
	key, err := solana.PrivateKeyFromBase58(c.cfg.SolanaPrivateKey)
	if err != nil {
		return nil, common.WrapOp("SolanaWallet", common.ErrConfiguration, err)
	}
	c.solWallet = &SolanaWallet{Key: key, PublicKey: key.PublicKey()}
	return c.solWallet, nil
}
