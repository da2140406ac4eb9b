// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestSimulator(t *testing.T) *simulator {
	s := &simulator{logLevel: "error", dataDir: t.TempDir()}
	require.NoError(t, s.Init(context.Background()))
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func parseResponses(t *testing.T, out *bytes.Buffer) []*Response {
	var responses []*Response
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		resp := &Response{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), resp))
		responses = append(responses, resp)
	}
	require.NoError(t, scanner.Err())
	return responses
}

const counterPlan = `
name: counter
description: initialize, re-initialize and increment counters
payer: alice
steps:
  - endpoint: key
    key: bob
  - endpoint: initialize
    key: bob
    value: 42
    require:
      result:
        operator: "=="
        value: "42"
  - endpoint: initialize
    key: bob
    value: 7
    require:
      error: account already in use
  - endpoint: increment
    key: bob
    require:
      result:
        operator: "=="
        value: "43"
  - endpoint: key
    key: carol
  - endpoint: increment
    key: carol
    require:
      error: incorrect program id
  - endpoint: read
    key: bob
    require:
      result:
        operator: ">="
        value: "43"
`

func TestRunPlan(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newTestSimulator(t)

	_, err := s.createKey("alice")
	require.NoError(err)
	require.NoError(s.fund(ctx, "alice", 10_000_000))

	r := &runCmd{s: s}
	require.NoError(r.Init(bytes.NewBufferString(counterPlan), "-"))
	out := &bytes.Buffer{}
	require.NoError(r.Run(ctx, out))

	responses := parseResponses(t, out)
	require.Len(responses, 7)
	for i, resp := range responses {
		require.Equal(i, resp.ID)
	}

	require.Equal("created named key", responses[0].Result.Msg)
	require.NotEmpty(responses[1].Result.TxID)
	require.Equal(uint64(42), *responses[1].Result.Count)
	require.Contains(responses[1].Result.Logs, "Program log: Counter initialized with value: 42")

	require.Contains(responses[2].Error, "account already in use")
	require.Equal(uint64(42), *responses[2].Result.Count)

	require.Equal(uint64(43), *responses[3].Result.Count)

	require.Contains(responses[5].Error, "incorrect program id")
	require.Nil(responses[5].Result.Count)

	require.Equal(uint64(43), *responses[6].Result.Count)
	require.Empty(responses[6].Result.TxID)
}

func TestRunPlanAssertionFailed(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newTestSimulator(t)

	_, err := s.createKey("alice")
	require.NoError(err)
	require.NoError(s.fund(ctx, "alice", 10_000_000))

	plan := `{"payer":"alice","steps":[` +
		`{"endpoint":"key","key":"bob"},` +
		`{"endpoint":"initialize","key":"bob","value":1,"require":{"result":{"operator":"==","value":"2"}}},` +
		`{"endpoint":"increment","key":"bob"}]}`
	r := &runCmd{s: s}
	require.NoError(r.Init(bytes.NewBufferString(plan), "-"))
	out := &bytes.Buffer{}
	require.ErrorIs(r.Run(ctx, out), ErrAssertionFailed)

	responses := parseResponses(t, out)
	require.Len(responses, 2)
	require.Contains(responses[1].Error, ErrAssertionFailed.Error())
}

func TestRunPlanMissingKey(t *testing.T) {
	require := require.New(t)
	s := newTestSimulator(t)

	r := &runCmd{s: s}
	require.NoError(r.Init(bytes.NewBufferString(`{"payer":"alice","steps":[{"endpoint":"read","key":"nobody"}]}`), "-"))
	require.ErrorIs(r.Run(context.Background(), &bytes.Buffer{}), ErrNamedKeyNotFound)
}

func TestKeys(t *testing.T) {
	require := require.New(t)
	s := newTestSimulator(t)

	names, err := s.listKeys()
	require.NoError(err)
	require.Empty(names)

	_, err = s.selectKey("")
	require.ErrorIs(err, ErrNoKeys)

	bob, err := s.createKey("bob")
	require.NoError(err)
	_, err = s.createKey("alice")
	require.NoError(err)
	_, err = s.createKey("bob")
	require.ErrorIs(err, ErrDuplicateKeyName)
	_, err = s.createKey("../escape")
	require.ErrorIs(err, ErrInvalidKeyName)

	names, err = s.listKeys()
	require.NoError(err)
	require.Equal([]string{"alice", "bob"}, names)

	loaded, err := s.getKey("bob")
	require.NoError(err)
	require.Equal(bob, loaded)

	_, err = s.getKey("carol")
	require.ErrorIs(err, ErrNamedKeyNotFound)

	name, err := s.selectKey("bob")
	require.NoError(err)
	require.Equal("bob", name)
}

func TestFundRecordsGenesis(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	s := newTestSimulator(t)

	_, err := s.createKey("alice")
	require.NoError(err)
	require.NoError(s.fund(ctx, "alice", 5))
	require.NoError(s.fund(ctx, "alice", 7))

	addr, err := s.keyAddress("alice")
	require.NoError(err)
	acct, err := s.rt.GetAccount(ctx, addr)
	require.NoError(err)
	require.Equal(uint64(12), acct.Lamports)

	g, err := s.loadGenesis()
	require.NoError(err)
	require.Len(g.CustomAllocation, 2)
	require.Equal(addr, g.CustomAllocation[1].Address)
}

func TestRootCmd(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()

	run := func(args ...string) *bytes.Buffer {
		out := &bytes.Buffer{}
		cmd := NewRootCmd()
		cmd.SetOut(out)
		cmd.SetArgs(append([]string{"--database", dir, "--log-level", "error"}, args...))
		require.NoError(cmd.ExecuteContext(context.Background()))
		return out
	}
	run("key", "create", "alice")
	run("key", "create", "bob")
	run("genesis", "alice", "0.01")

	planPath := filepath.Join(dir, "plan.yaml")
	require.NoError(os.WriteFile(planPath, []byte(`
payer: alice
steps:
  - endpoint: initialize
    key: bob
    value: 9
  - endpoint: increment
    key: bob
    require:
      result:
        operator: ">="
        value: "10"
`), 0o600))
	responses := parseResponses(t, run("run", planPath))
	require.Len(responses, 2)
	require.Empty(responses[0].Error)
	require.Equal(uint64(10), *responses[1].Result.Count)

	// State survives reopening the database.
	responses = parseResponses(t, run("run", planPath))
	require.Contains(responses[0].Error, "account already in use")
	require.Equal(uint64(11), *responses[1].Result.Count)
}
