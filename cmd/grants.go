package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-purchases/app/entity"
	"github.com/vibast-solutions/ms-go-purchases/app/repository"
)

var (
	grantsViewerID string
	grantsLimit    int32
	grantsOffset   int32
)

var grantsCmd = &cobra.Command{
	Use:   "grants",
	Short: "Inspect purchase grants",
}

var grantsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the purchase grants held by a viewer",
	RunE: func(_ *cobra.Command, _ []string) error {
		viewerID := strings.TrimSpace(grantsViewerID)
		if viewerID == "" {
			return errors.New("--viewer is required")
		}

		cfg := mustLoadConfig()
		db := mustOpenDB(cfg)
		defer db.Close()

		items, err := repository.NewPurchaseGrantRepository(db).ListByViewer(context.Background(), viewerID, grantsLimit, grantsOffset)
		if err != nil {
			logrus.WithError(err).WithField("viewer_id", viewerID).Fatal("Failed to list purchase grants")
		}
		fmt.Println(renderGrantsTable(items))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(grantsCmd)
	grantsCmd.AddCommand(grantsListCmd)

	grantsListCmd.Flags().StringVar(&grantsViewerID, "viewer", "", "Viewer id whose grants are listed")
	grantsListCmd.Flags().Int32Var(&grantsLimit, "limit", 50, "Maximum number of rows")
	grantsListCmd.Flags().Int32Var(&grantsOffset, "offset", 0, "Rows to skip")
}

func renderGrantsTable(items []*entity.PurchaseGrant) string {
	if len(items) == 0 {
		return "No purchase grants"
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			strconv.FormatUint(item.ID, 10),
			item.VideoID,
			item.TransactionID,
			formatAmount(item.AmountCents, item.Currency),
			formatTimestamp(item.CreatedAt),
		})
	}

	return renderTable(
		[]string{"ID", "Video", "Transaction", "Amount", "Granted At"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	)
}
