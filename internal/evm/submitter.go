package evm

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/quotient-labs/swap-engine/internal/chains"
	"github.com/quotient-labs/swap-engine/internal/common"
	"github.com/quotient-labs/swap-engine/internal/domain"
	"github.com/quotient-labs/swap-engine/internal/metrics"
)

const defaultGasLimit = 500_000

// TxClient is the slice of ethclient.Client the submitter uses.
type TxClient interface {
	ContractCaller
	PendingNonceAt(ctx context.Context, account ethcommon.Address) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash ethcommon.Hash) (*types.Receipt, error)
}

// Submitter signs and broadcasts assembled call envelopes, or dry-runs them
// via eth_call. One instance per chain.
type Submitter struct {
	client TxClient
	signer *chains.EVMSigner
	chain  domain.ChainID
	log    *common.ServiceLogger

	confirmTimeout time.Duration
	pollInterval   time.Duration
}

func NewSubmitter(client TxClient, signer *chains.EVMSigner, chain domain.ChainID, confirmTimeout, pollInterval time.Duration) *Submitter {
	return &Submitter{
		client:         client,
		signer:         signer,
		chain:          chain,
		log:            common.NewServiceLogger("evm-submitter"),
		confirmTimeout: confirmTimeout,
		pollInterval:   pollInterval,
	}
}

// Send signs the envelope and broadcasts it. Network rejections are retried
// up to maxRetries additional attempts; maxRetries = 0 still sends once.
// No preflight call is made: the engine's own minimum-output guard already
// bounds the downside.
func (s *Submitter) Send(ctx context.Context, env *domain.EVMCallEnvelope, maxRetries uint) (ethcommon.Hash, error) {
	signed, err := s.sign(ctx, env)
	if err != nil {
		return ethcommon.Hash{}, err
	}

	var lastErr error
	for attempt := uint(0); attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ethcommon.Hash{}, common.WrapOp("Send", common.ErrSubmission, ctx.Err())
			case <-time.After(time.Second):
			}
		}
		if lastErr = s.client.SendTransaction(ctx, signed); lastErr == nil {
			metrics.Submissions.WithLabelValues(s.chain.String(), "ok").Inc()
			s.log.Info().Str("tx", signed.Hash().Hex()).Msg("transaction broadcast")
			return signed.Hash(), nil
		}
	}
	metrics.Submissions.WithLabelValues(s.chain.String(), "error").Inc()
	return ethcommon.Hash{}, common.WrapOp("Send", common.ErrSubmission, lastErr)
}

// Simulate executes the envelope via eth_call: same calldata and value, no
// state change, no gas spent.
func (s *Submitter) Simulate(ctx context.Context, env *domain.EVMCallEnvelope) (*domain.SimulationResult, error) {
	msg := ethereum.CallMsg{
		From:  s.signer.Address,
		To:    &env.To,
		Value: env.Value,
		Data:  env.Data,
	}
	ret, err := s.client.CallContract(ctx, msg, nil)
	if err != nil {
		metrics.Simulations.WithLabelValues(s.chain.String(), "error").Inc()
		return &domain.SimulationResult{Success: false, Error: err.Error()}, nil
	}
	metrics.Simulations.WithLabelValues(s.chain.String(), "ok").Inc()
	return &domain.SimulationResult{
		Success:    true,
		ReturnData: ethcommon.Bytes2Hex(ret),
	}, nil
}

// WaitForReceipt polls for the transaction receipt with a fixed inter-poll
// delay, bounded by the configured maximum duration. On exhaustion the
// distinct confirmation-timeout error is returned: the transaction may still
// land later.
func (s *Submitter) WaitForReceipt(ctx context.Context, txHash ethcommon.Hash) (*types.Receipt, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.confirmTimeout)
	defer cancel()

	for {
		receipt, err := s.client.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			metrics.ConfirmationDuration.Observe(time.Since(start).Seconds())
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			metrics.ConfirmationTimeouts.Inc()
			return nil, common.WrapOp("WaitForReceipt", common.ErrConfirmationTimeout, ctx.Err())
		case <-time.After(s.pollInterval):
		}
	}
}

func (s *Submitter) sign(ctx context.Context, env *domain.EVMCallEnvelope) (*types.Transaction, error) {
	nonce, err := s.client.PendingNonceAt(ctx, s.signer.Address)
	if err != nil {
		return nil, common.WrapOp("Send", common.ErrSubmission, err)
	}
	tip, err := s.client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, common.WrapOp("Send", common.ErrSubmission, err)
	}
	head, err := s.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, common.WrapOp("Send", common.ErrSubmission, err)
	}
	feeCap := new(big.Int).Set(tip)
	if head.BaseFee != nil {
		feeCap.Add(feeCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	}

	gasLimit := env.GasLimit
	if gasLimit == 0 {
		gasLimit = defaultGasLimit
	}

	chainID := env.Chain.EVMChainID()
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &env.To,
		Value:     env.Value,
		Data:      env.Data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), s.signer.Key)
	if err != nil {
		return nil, common.WrapOp("Send", common.ErrSubmission, err)
	}
	return signed, nil
}
