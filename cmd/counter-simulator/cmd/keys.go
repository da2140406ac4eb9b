// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/crypto/ed25519"
	"github.com/ava-labs/hypercounter/utils"
)

const (
	keysFolder   = "keys"
	keyExtension = ".pk"
)

func newKeyCmd(s *simulator) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage named keys",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create [name]",
			Short: "Create a new named ed25519 key",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				priv, err := s.createKey(args[0])
				if err != nil {
					return err
				}
				utils.Outf("{{green}}created key:{{/}} %s {{yellow}}address:{{/}} %s\n", args[0], priv.PublicKey().Address())
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List named keys and their balances",
			RunE: func(cmd *cobra.Command, _ []string) error {
				names, err := s.listKeys()
				if err != nil {
					return err
				}
				for _, name := range names {
					addr, err := s.keyAddress(name)
					if err != nil {
						return err
					}
					acct, err := s.rt.GetAccount(cmd.Context(), addr)
					if err != nil {
						return err
					}
					utils.Outf("{{cyan}}%s{{/}} %s {{yellow}}balance:{{/}} %s\n", name, addr, utils.FormatBalance(acct.Lamports))
				}
				return nil
			},
		},
	)
	return cmd
}

func (s *simulator) keyPath(name string) string {
	return filepath.Join(s.dataDir, keysFolder, name+keyExtension)
}

func (s *simulator) createKey(name string) (ed25519.PrivateKey, error) {
	if len(name) == 0 || strings.ContainsAny(name, `/\`) {
		return ed25519.EmptyPrivateKey, fmt.Errorf("%w: %q", ErrInvalidKeyName, name)
	}
	if _, err := os.Stat(s.keyPath(name)); err == nil {
		return ed25519.EmptyPrivateKey, fmt.Errorf("%w: %s", ErrDuplicateKeyName, name)
	}
	if _, err := utils.InitSubDirectory(s.dataDir, keysFolder); err != nil {
		return ed25519.EmptyPrivateKey, err
	}
	priv, err := ed25519.GeneratePrivateKey()
	if err != nil {
		return ed25519.EmptyPrivateKey, err
	}
	if err := utils.SaveBytes(s.keyPath(name), priv[:]); err != nil {
		return ed25519.EmptyPrivateKey, err
	}
	s.log.Debug("key created",
		zap.String("name", name),
		zap.Stringer("address", priv.PublicKey().Address()),
	)
	return priv, nil
}

func (s *simulator) getKey(name string) (ed25519.PrivateKey, error) {
	b, err := utils.LoadBytes(s.keyPath(name), ed25519.PrivateKeyLen)
	if errors.Is(err, fs.ErrNotExist) {
		return ed25519.EmptyPrivateKey, fmt.Errorf("%w: %s", ErrNamedKeyNotFound, name)
	}
	if err != nil {
		return ed25519.EmptyPrivateKey, err
	}
	return ed25519.PrivateKey(b), nil
}

func (s *simulator) keyAddress(name string) (codec.Address, error) {
	priv, err := s.getKey(name)
	if err != nil {
		return codec.EmptyAddress, err
	}
	return priv.PublicKey().Address(), nil
}

func (s *simulator) listKeys() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dataDir, keysFolder))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != keyExtension {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), keyExtension))
	}
	sort.Strings(names)
	return names, nil
}

// selectKey returns [name] if set and otherwise asks for one of the stored
// keys.
func (s *simulator) selectKey(name string) (string, error) {
	if len(name) > 0 {
		return name, nil
	}
	names, err := s.listKeys()
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", ErrNoKeys
	}
	utils.Outf("{{cyan}}stored keys:{{/}} %d\n", len(names))
	for i, name := range names {
		utils.Outf("%d) {{cyan}}%s{{/}}\n", i, name)
	}
	index, err := choice("select key", len(names))
	if err != nil {
		return "", err
	}
	return names[index], nil
}

func choice(label string, maxChoice int) (int, error) {
	promptText := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			index, err := strconv.Atoi(strings.TrimSpace(input))
			if err != nil {
				return err
			}
			if index < 0 || index >= maxChoice {
				return ErrInvalidChoice
			}
			return nil
		},
	}
	rawIndex, err := promptText.Run()
	if err != nil {
		return -1, err
	}
	return strconv.Atoi(strings.TrimSpace(rawIndex))
}
