package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	crevid "github.com/womingyoutian/crev/id"
	"github.com/womingyoutian/crev/pkg/clock"
	"github.com/womingyoutian/crev/pkg/utils"
	"github.com/womingyoutian/crev/proof"
)

func proofCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "proof", Short: "Create and verify crev proofs"}
	cmd.AddCommand(proofTrustCmd())
	cmd.AddCommand(proofVerifyCmd())
	return cmd
}

func loadOwnId(path string) (crevid.OwnId, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return crevid.OwnId{}, utils.Wrap(err, "read identity file")
	}
	locked, err := crevid.ParseLockedIdYAML(data)
	if err != nil {
		return crevid.OwnId{}, utils.Wrap(err, "parse identity file")
	}
	passphrase, err := readPassphrase("passphrase: ")
	if err != nil {
		return crevid.OwnId{}, err
	}
	return locked.Unlock(passphrase)
}

func proofTrustCmd() *cobra.Command {
	var idFile, comment string
	var level string
	c := &cobra.Command{
		Use:   "trust [identity-file] [subject-id...]",
		Short: "sign a trust proof for one or more subjects",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idFile = args[0]
			own, err := loadOwnId(idFile)
			if err != nil {
				return err
			}
			defer own.Destroy()

			trustLevel, err := proof.ParseTrustLevel(level)
			if err != nil {
				return utils.Wrap(err, "parse trust level")
			}

			var subjects []crevid.PubId
			for _, s := range args[1:] {
				sid, err := crevid.ParseId(s)
				if err != nil {
					return utils.Wrap(err, "parse subject id")
				}
				subjects = append(subjects, crevid.PubId{ID: sid, IDType: crevid.IDType})
			}

			body, err := proof.NewTrustProofBody(own.AsPubId(), subjects, trustLevel, comment, clock.System{})
			if err != nil {
				return utils.Wrap(err, "build trust proof")
			}
			p, err := proof.SignBy(body, own)
			if err != nil {
				return utils.Wrap(err, "sign proof")
			}
			_, err = os.Stdout.Write(proof.Serialize(p))
			return err
		},
	}
	c.Flags().StringVar(&level, "level", "medium", "trust level: distrust|none|low|medium|high")
	c.Flags().StringVar(&comment, "comment", "", "optional free-form comment")
	return c
}

func proofVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "parse and verify proof envelopes read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return utils.Wrap(err, "read stdin")
			}
			proofs, err := proof.Parse(data)
			if err != nil {
				return utils.Wrap(err, "parse proofs")
			}
			for i, p := range proofs {
				if err := p.Verify(); err != nil {
					fmt.Printf("proof %d: FAIL %s (%s)\n", i, p.Body.SignerID(), err)
					continue
				}
				fmt.Printf("proof %d: OK %s %s\n", i, p.Body.Kind(), p.Body.SignerID())
			}
			return nil
		},
	}
}
