package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/womingyoutian/crev/id"
	"github.com/womingyoutian/crev/pkg/config"
	"github.com/womingyoutian/crev/pkg/utils"
)

func readPassphrase(prompt string) (string, error) {
	if v := os.Getenv("CREV_PASSPHRASE"); v != "" {
		return v, nil
	}
	fmt.Fprint(os.Stderr, prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	return trimNewline(line), nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func idCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "id", Short: "Manage crev identities"}
	cmd.AddCommand(idGenerateCmd())
	cmd.AddCommand(idUnlockCmd())
	return cmd
}

func idGenerateCmd() *cobra.Command {
	var out string
	c := &cobra.Command{
		Use:   "generate [git-url]",
		Short: "generate a fresh identity and lock it to disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			own, err := id.GenerateForGitURL(args[0])
			if err != nil {
				return utils.Wrap(err, "generate identity")
			}
			defer own.Destroy()

			passphrase, err := readPassphrase("passphrase: ")
			if err != nil {
				return err
			}

			locked, err := id.Lock(own, passphrase)
			if err != nil {
				return utils.Wrap(err, "lock identity")
			}
			data, err := id.MarshalLockedIdYAML(locked)
			if err != nil {
				return utils.Wrap(err, "marshal identity")
			}

			if out == "" {
				dir := config.AppConfig.Identity.StoreDir
				if dir == "" {
					dir = "."
				}
				out = filepath.Join(dir, own.Pub.ID.String()+".yaml")
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o700); err != nil {
				return utils.Wrap(err, "create identity directory")
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return utils.Wrap(err, "write identity file")
			}

			log.WithField("id", own.Pub.ID.String()).WithField("path", out).Info("identity generated")
			fmt.Println(own.Pub.ID.String())
			return nil
		},
	}
	c.Flags().StringVar(&out, "out", "", "path to write the locked identity YAML (default: <store-dir>/<id>.yaml)")
	return c
}

func idUnlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock [path]",
		Short: "unlock an identity file and print its public id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return utils.Wrap(err, "read identity file")
			}
			locked, err := id.ParseLockedIdYAML(data)
			if err != nil {
				return utils.Wrap(err, "parse identity file")
			}
			passphrase, err := readPassphrase("passphrase: ")
			if err != nil {
				return err
			}
			own, err := locked.Unlock(passphrase)
			if err != nil {
				return utils.Wrap(err, "unlock identity")
			}
			defer own.Destroy()
			fmt.Println(own.Pub.ID.String())
			return nil
		},
	}
}
