// Package raydium quotes and executes swaps against Raydium AMM v4 pools on
// Solana.
package raydium

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gagliardetto/solana-go"

	"github.com/quotient-labs/swap-engine/internal/common"
	"github.com/quotient-labs/swap-engine/internal/domain"
	"github.com/quotient-labs/swap-engine/internal/metrics"
)

const catalogFetchTimeout = 30 * time.Second

// catalogPool is one entry of the published liquidity catalog. Account fields
// arrive base58-encoded.
type catalogPool struct {
	ID               string `json:"id"`
	BaseMint         string `json:"baseMint"`
	QuoteMint        string `json:"quoteMint"`
	LpMint           string `json:"lpMint"`
	BaseDecimals     uint8  `json:"baseDecimals"`
	QuoteDecimals    uint8  `json:"quoteDecimals"`
	Version          int    `json:"version"`
	ProgramID        string `json:"programId"`
	Authority        string `json:"authority"`
	OpenOrders       string `json:"openOrders"`
	TargetOrders     string `json:"targetOrders"`
	BaseVault        string `json:"baseVault"`
	QuoteVault       string `json:"quoteVault"`
	MarketVersion    int    `json:"marketVersion"`
	MarketProgramID  string `json:"marketProgramId"`
	MarketID         string `json:"marketId"`
	MarketAuthority  string `json:"marketAuthority"`
	MarketBaseVault  string `json:"marketBaseVault"`
	MarketQuoteVault string `json:"marketQuoteVault"`
	MarketBids       string `json:"marketBids"`
	MarketAsks       string `json:"marketAsks"`
	MarketEventQueue string `json:"marketEventQueue"`
}

type catalog struct {
	Official   []catalogPool `json:"official"`
	UnOfficial []catalogPool `json:"unOfficial"`
}

// pairKey indexes pools by their mint pair, order-normalized so either swap
// direction finds the same pool.
type pairKey struct {
	low, high string
}

func newPairKey(a, b solana.PublicKey) pairKey {
	sa, sb := a.String(), b.String()
	if sa > sb {
		sa, sb = sb, sa
	}
	return pairKey{low: sa, high: sb}
}

// Registry downloads the liquidity catalog once and indexes pool keys by mint
// pair. Official pools win over unofficial ones when both list the same pair.
// A failed fetch degrades to an empty index rather than failing the process;
// lookups then report no pool.
type Registry struct {
	url    string
	client *http.Client
	log    *common.ServiceLogger

	once  sync.Once
	pools map[pairKey]*domain.RaydiumPoolKeys
}

func NewRegistry(url string) *Registry {
	return &Registry{
		url:    url,
		client: &http.Client{Timeout: catalogFetchTimeout},
		log:    common.NewServiceLogger("raydium-registry"),
	}
}

// Find returns the pool keys for the (mintA, mintB) pair in either
// orientation, loading the catalog on first use.
func (r *Registry) Find(ctx context.Context, mintA, mintB solana.PublicKey) (*domain.RaydiumPoolKeys, error) {
	r.once.Do(func() { r.load(ctx) })

	keys, ok := r.pools[newPairKey(mintA, mintB)]
	if !ok {
		return nil, common.WrapOp("Find", common.ErrPoolNotFound,
			fmt.Errorf("no catalog pool for %s/%s", mintA, mintB))
	}
	return keys, nil
}

func (r *Registry) load(ctx context.Context) {
	r.pools = make(map[pairKey]*domain.RaydiumPoolKeys)

	cat, err := r.fetch(ctx)
	if err != nil {
		metrics.CatalogLoads.WithLabelValues("error").Inc()
		r.log.Error().Err(err).Str("url", r.url).Msg("catalog load failed, continuing with empty index")
		return
	}

	// Unofficial first so official entries overwrite duplicates.
	for _, p := range cat.UnOfficial {
		r.index(p)
	}
	for _, p := range cat.Official {
		r.index(p)
	}
	metrics.CatalogLoads.WithLabelValues("ok").Inc()
	metrics.CatalogPoolCount.Set(float64(len(r.pools)))
	r.log.Info().Int("pools", len(r.pools)).Msg("catalog loaded")
}

func (r *Registry) fetch(ctx context.Context) (*catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog fetch: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var cat catalog
	if err := sonic.Unmarshal(body, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *Registry) index(p catalogPool) {
	keys, err := p.toPoolKeys()
	if err != nil {
		// One malformed entry should not sink the whole catalog.
		r.log.Warn().Err(err).Str("pool", p.ID).Msg("skipping malformed catalog entry")
		return
	}
	r.pools[newPairKey(keys.BaseMint, keys.QuoteMint)] = keys
}

func (p catalogPool) toPoolKeys() (*domain.RaydiumPoolKeys, error) {
	keys := &domain.RaydiumPoolKeys{
		BaseDecimals:  p.BaseDecimals,
		QuoteDecimals: p.QuoteDecimals,
		Version:       p.Version,
		MarketVersion: p.MarketVersion,
	}
	fields := []struct {
		name string
		raw  string
		dst  *solana.PublicKey
	}{
		{"id", p.ID, &keys.ID},
		{"baseMint", p.BaseMint, &keys.BaseMint},
		{"quoteMint", p.QuoteMint, &keys.QuoteMint},
		{"lpMint", p.LpMint, &keys.LpMint},
		{"programId", p.ProgramID, &keys.ProgramID},
		{"authority", p.Authority, &keys.Authority},
		{"openOrders", p.OpenOrders, &keys.OpenOrders},
		{"targetOrders", p.TargetOrders, &keys.TargetOrders},
		{"baseVault", p.BaseVault, &keys.BaseVault},
		{"quoteVault", p.QuoteVault, &keys.QuoteVault},
		{"marketProgramId", p.MarketProgramID, &keys.MarketProgramID},
		{"marketId", p.MarketID, &keys.MarketID},
		{"marketAuthority", p.MarketAuthority, &keys.MarketAuthority},
		{"marketBaseVault", p.MarketBaseVault, &keys.MarketBaseVault},
		{"marketQuoteVault", p.MarketQuoteVault, &keys.MarketQuoteVault},
		{"marketBids", p.MarketBids, &keys.MarketBids},
		{"marketAsks", p.MarketAsks, &keys.MarketAsks},
		{"marketEventQueue", p.MarketEventQueue, &keys.MarketEventQueue},
	}
	for _, f := range fields {
		pk, err := solana.PublicKeyFromBase58(f.raw)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.name, err)
		}
		*f.dst = pk
	}
	return keys, nil
}
