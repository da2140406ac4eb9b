// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/hypercounter/chain"
	"github.com/ava-labs/hypercounter/counter"
	"github.com/ava-labs/hypercounter/crypto/ed25519"
	"github.com/ava-labs/hypercounter/program"
)

type runCmd struct {
	s    *simulator
	plan *Plan
}

func newRunCmd(s *simulator) *cobra.Command {
	r := &runCmd{s: s}
	return &cobra.Command{
		Use:   "run [path]",
		Short: "Run a counter simulation plan (use - to read from stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.Init(cmd.InOrStdin(), args[0]); err != nil {
				return err
			}
			return r.Run(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (c *runCmd) Init(stdin io.Reader, path string) error {
	var (
		planBytes []byte
		err       error
	)
	if path == "-" {
		planBytes, err = io.ReadAll(stdin)
	} else {
		planBytes, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}
	c.plan, err = unmarshalPlan(planBytes)
	if err != nil {
		return err
	}
	return verifyPlan(c.plan)
}

// Run executes every step of the plan and prints one [Response] per step to
// [out]. It stops at the first failed assertion.
func (c *runCmd) Run(ctx context.Context, out io.Writer) error {
	c.s.log.Info("simulation",
		zap.String("plan", c.plan.Name),
		zap.String("description", c.plan.Description),
	)

	for i, step := range c.plan.Steps {
		c.s.log.Info("simulation",
			zap.Int("step", i),
			zap.String("description", step.Description),
			zap.String("endpoint", string(step.Endpoint)),
			zap.String("key", step.Key),
		)

		resp := NewResponse(i)
		stepErr := c.runStep(ctx, i, &step, resp)
		if stepErr != nil {
			resp.Error = stepErr.Error()
		}
		if err := resp.Print(out); err != nil {
			return err
		}
		if stepErr != nil && !errors.Is(stepErr, ErrTxFailed) {
			return fmt.Errorf("step %d: %w", i, stepErr)
		}
	}
	return nil
}

func (c *runCmd) runStep(ctx context.Context, i int, step *Step, resp *Response) error {
	if step.Endpoint == KeyEndpoint {
		priv, err := c.s.createKey(step.Key)
		switch {
		case errors.Is(err, ErrDuplicateKeyName):
			c.s.log.Debug("key already exists", zap.String("name", step.Key))
			addr, err := c.s.keyAddress(step.Key)
			if err != nil {
				return err
			}
			resp.Result.Address = addr.String()
			resp.Result.Msg = "named key already exists"
		case err != nil:
			return err
		default:
			resp.Result.Address = priv.PublicKey().Address().String()
			resp.Result.Msg = "created named key"
		}
		return nil
	}

	target, err := c.s.getKey(step.Key)
	if err != nil {
		return err
	}
	addr := target.PublicKey().Address()
	resp.Result.Address = addr.String()

	var txErr error
	if step.Endpoint != ReadEndpoint {
		result, err := c.execute(ctx, i, step, target)
		if err != nil {
			return err
		}
		resp.Result.TxID = result.TxID.String()
		resp.Result.Logs = result.Logs
		if !result.Success {
			txErr = fmt.Errorf("%w: %s", ErrTxFailed, result.Error)
			resp.Error = txErr.Error()
		}
	}

	count, ok, err := c.s.readCount(ctx, addr)
	if err != nil {
		return err
	}
	if ok {
		resp.Result.Count = &count
	}
	return c.check(step.Require, resp.Result.Count, txErr)
}

func (c *runCmd) execute(ctx context.Context, i int, step *Step, target ed25519.PrivateKey) (*chain.Result, error) {
	payerName := step.Payer
	if len(payerName) == 0 {
		payerName = c.plan.Payer
	}
	payer, err := c.s.getKey(payerName)
	if err != nil {
		return nil, err
	}

	var (
		ix      *program.Instruction
		signers = []ed25519.PrivateKey{payer}
	)
	switch step.Endpoint {
	case InitializeEndpoint:
		ix, err = counter.NewInitializeInstruction(
			counter.ProgramID,
			target.PublicKey().Address(),
			payer.PublicKey().Address(),
			step.Value,
		)
		if target != payer {
			signers = append(signers, target)
		}
	case IncrementEndpoint:
		ix, err = counter.NewIncrementInstruction(counter.ProgramID, target.PublicKey().Address())
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, step.Endpoint)
	}
	if err != nil {
		return nil, err
	}

	tx, err := chain.NewTx(time.Now().UnixMilli()+int64(i), ix).Sign(signers...)
	if err != nil {
		return nil, err
	}
	result, err := c.s.rt.Execute(ctx, tx)
	if err != nil {
		return nil, err
	}
	c.s.log.Debug("transaction executed",
		zap.Stringer("txID", result.TxID),
		zap.Bool("success", result.Success),
		zap.String("error", result.Error),
	)
	return result, nil
}

// check applies [require] to the outcome of a step. A failed transaction is
// only an error when it was not expected.
func (*runCmd) check(require *Require, count *uint64, txErr error) error {
	if require == nil {
		return txErr
	}
	if len(require.Error) > 0 {
		if txErr == nil {
			return fmt.Errorf("%w: expected error %q", ErrAssertionFailed, require.Error)
		}
		if !strings.Contains(txErr.Error(), require.Error) {
			return fmt.Errorf("%w: expected error %q, got %q", ErrAssertionFailed, require.Error, txErr)
		}
	} else if txErr != nil {
		return fmt.Errorf("%w: %v", ErrAssertionFailed, txErr)
	}
	if require.Result == nil {
		return nil
	}
	if count == nil {
		return fmt.Errorf("%w: account holds no counter", ErrAssertionFailed)
	}
	ok, err := validateAssertion(*count, require.Result)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %d %s %s", ErrAssertionFailed, *count, require.Result.Operator, require.Result.Value)
	}
	return nil
}
