package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/womingyoutian/crev/id"
	"github.com/womingyoutian/crev/pkg/config"
	"github.com/womingyoutian/crev/pkg/utils"
	"github.com/womingyoutian/crev/proof"
	"github.com/womingyoutian/crev/proofdb"
)

func trustCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trust [viewer-id] [proofs-file...]",
		Short: "import proofs and compute the trust set for a viewer",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewer, err := id.ParseId(args[0])
			if err != nil {
				return utils.Wrap(err, "parse viewer id")
			}

			db := proofdb.New()
			for _, path := range args[1:] {
				// Each file is imported as one batch; the correlation id ties
				// together every per-proof rejection logged for that batch,
				// the way a request id ties together one request's log lines.
				batchID := uuid.NewString()
				data, err := os.ReadFile(path)
				if err != nil {
					return utils.Wrap(err, "read proofs file")
				}
				proofs, err := proof.Parse(data)
				if err != nil {
					return utils.Wrap(err, "parse proofs file "+path)
				}
				log.WithFields(log.Fields{"batch": batchID, "file": path, "proofs": len(proofs)}).Info("importing proof batch")
				for i, importErr := range db.ImportFromIter(proofs) {
					if importErr != nil {
						log.WithFields(log.Fields{"batch": batchID, "file": path, "index": i}).Warn(importErr)
						fmt.Fprintf(os.Stderr, "warning: %s proof %d rejected: %v\n", path, i, importErr)
					}
				}
			}

			params := proofdb.TrustDistanceParams{
				HighTrustDistance:   config.AppConfig.Trust.HighDistance,
				MediumTrustDistance: config.AppConfig.Trust.MediumDistance,
				LowTrustDistance:    config.AppConfig.Trust.LowDistance,
				MaxDistance:         config.AppConfig.Trust.MaxDistance,
			}
			set := db.CalculateTrustSet(viewer, params)
			for _, tid := range set.TrustedIds() {
				d, _ := set.Distance(tid)
				fmt.Printf("%s\t%d\n", tid.String(), d)
			}
			return nil
		},
	}
}
