package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-purchases/app/entity"
	"github.com/vibast-solutions/ms-go-purchases/app/repository"
)

var (
	orphansLimit  int32
	orphansOffset int32
)

var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "Inspect confirmed payments whose payer could not be resolved",
}

var orphansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orphaned payments, most recently seen first",
	Run: func(_ *cobra.Command, _ []string) {
		cfg := mustLoadConfig()
		db := mustOpenDB(cfg)
		defer db.Close()

		items, err := repository.NewOrphanedPaymentRepository(db).List(context.Background(), orphansLimit, orphansOffset)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to list orphaned payments")
		}
		fmt.Println(renderOrphansTable(items))
	},
}

func init() {
	rootCmd.AddCommand(orphansCmd)
	orphansCmd.AddCommand(orphansListCmd)

	orphansListCmd.Flags().Int32Var(&orphansLimit, "limit", 50, "Maximum number of rows")
	orphansListCmd.Flags().Int32Var(&orphansOffset, "offset", 0, "Rows to skip")
}

func renderOrphansTable(items []*entity.OrphanedPayment) string {
	if len(items) == 0 {
		return "No orphaned payments"
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.TransactionID,
			item.PayerEmail,
			item.VideoID,
			formatAmount(item.AmountCents, item.Currency),
			strconv.Itoa(int(item.Occurrences)),
			formatTimestamp(item.FirstSeenAt),
			formatTimestamp(item.LastSeenAt),
		})
	}

	return renderTable(
		[]string{"Transaction", "Payer Email", "Video", "Amount", "Seen", "First Seen", "Last Seen"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	)
}
