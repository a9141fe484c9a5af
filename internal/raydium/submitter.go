package raydium

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/quotient-labs/swap-engine/internal/chains"
	"github.com/quotient-labs/swap-engine/internal/common"
	"github.com/quotient-labs/swap-engine/internal/domain"
	"github.com/quotient-labs/swap-engine/internal/metrics"
)

// TxClient is the slice of rpc.Client the submitter uses.
type TxClient interface {
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*rpc.SimulateTransactionResponse, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}

// Submitter signs where needed, broadcasts assembled transactions and tracks
// them to confirmation.
type Submitter struct {
	client TxClient
	wallet *chains.SolanaWallet
	log    *common.ServiceLogger

	confirmTimeout time.Duration
	pollInterval   time.Duration
}

func NewSubmitter(client TxClient, wallet *chains.SolanaWallet, confirmTimeout, pollInterval time.Duration) *Submitter {
	return &Submitter{
		client:         client,
		wallet:         wallet,
		log:            common.NewServiceLogger("raydium-submitter"),
		confirmTimeout: confirmTimeout,
		pollInterval:   pollInterval,
	}
}

// sign fills in the envelope's signatures when the assembler deferred them.
func (s *Submitter) sign(env *domain.SolanaEnvelope) error {
	if env.Signed {
		return nil
	}
	if _, err := env.Tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.wallet.PublicKey) {
			return &s.wallet.Key
		}
		return nil
	}); err != nil {
		return err
	}
	env.Signed = true
	return nil
}

// Send broadcasts the envelope, signing it first when the assembler left it
// unsigned. Preflight is skipped: the RPC node's own retransmit loop, bounded
// by maxRetries, handles transient drops better than a preflight reject.
func (s *Submitter) Send(ctx context.Context, env *domain.SolanaEnvelope, maxRetries uint) (solana.Signature, error) {
	if err := s.sign(env); err != nil {
		return solana.Signature{}, common.WrapOp("Send", common.ErrSubmission, err)
	}

	sig, err := s.client.SendTransactionWithOpts(ctx, env.Tx, rpc.TransactionOpts{
		SkipPreflight: true,
		MaxRetries:    &maxRetries,
	})
	if err != nil {
		metrics.Submissions.WithLabelValues(domain.PoolKindRaydium.String(), "error").Inc()
		return solana.Signature{}, common.WrapOp("Send", common.ErrSubmission, err)
	}
	metrics.Submissions.WithLabelValues(domain.PoolKindRaydium.String(), "ok").Inc()
	s.log.Info().Str("signature", sig.String()).Str("format", env.Format.String()).Msg("transaction broadcast")
	return sig, nil
}

// Simulate dry-runs the transaction on the node. Program-level failures come
// back inside the result, not as an error. The node sanitizes the signature
// count against the message header before simulating, so an envelope with
// deferred signing is signed here too.
func (s *Submitter) Simulate(ctx context.Context, env *domain.SolanaEnvelope) (*domain.SimulationResult, error) {
	if err := s.sign(env); err != nil {
		return nil, common.WrapOp("Simulate", common.ErrSubmission, err)
	}
	out, err := s.client.SimulateTransaction(ctx, env.Tx)
	if err != nil {
		metrics.Simulations.WithLabelValues(domain.PoolKindRaydium.String(), "error").Inc()
		return &domain.SimulationResult{Success: false, Error: err.Error()}, nil
	}

	result := &domain.SimulationResult{
		Success: out.Value.Err == nil,
		Logs:    out.Value.Logs,
	}
	if out.Value.Err != nil {
		result.Error = fmt.Sprintf("%v", out.Value.Err)
	}
	if out.Value.UnitsConsumed != nil {
		result.ComputeUnitsConsumed = *out.Value.UnitsConsumed
	}
	status := "ok"
	if !result.Success {
		status = "error"
	}
	metrics.Simulations.WithLabelValues(domain.PoolKindRaydium.String(), status).Inc()
	return result, nil
}

// Confirm polls the signature status until it reaches confirmed or finalized
// commitment, bounded by the configured maximum duration. A status carrying a
// transaction error fails immediately.
func (s *Submitter) Confirm(ctx context.Context, sig solana.Signature) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.confirmTimeout)
	defer cancel()

	for {
		out, err := s.client.GetSignatureStatuses(ctx, true, sig)
		if err == nil && out != nil && len(out.Value) > 0 && out.Value[0] != nil {
			status := out.Value[0]
			if status.Err != nil {
				return common.WrapOp("Confirm", common.ErrSubmission,
					fmt.Errorf("transaction %s failed on chain: %v", sig, status.Err))
			}
			switch status.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				metrics.ConfirmationDuration.Observe(time.Since(start).Seconds())
				return nil
			}
		}

		select {
		case <-ctx.Done():
			metrics.ConfirmationTimeouts.Inc()
			return common.WrapOp("Confirm", common.ErrConfirmationTimeout, ctx.Err())
		case <-time.After(s.pollInterval):
		}
	}
}
