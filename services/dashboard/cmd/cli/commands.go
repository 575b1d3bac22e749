package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg/utils"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/pkg/views"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/services/dashboard/app"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/services/dashboard/internal/derived"
	"github.com/nimeshabuddhika/fraud-insights-dashboard/services/dashboard/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// componentsLoader builds the session components, optionally overriding the scoring service address.
type componentsLoader func(scoringAddr string) (app.Components, error)

// waitGrace is added on top of the component timeouts so the CLI never cuts a request short.
const waitGrace = 5 * time.Second

func newRootCmd(logger *zap.Logger, load componentsLoader) *cobra.Command {
	var scoringAddr string
	var wait time.Duration

	root := &cobra.Command{
		Use:          "fraudctl",
		Short:        "Score transactions and inspect corpus insights against the fraud scoring service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&scoringAddr, "scoring-addr", "", "scoring service base URL (overrides APP_SCORING_SERVICE_ADDR)")
	root.PersistentFlags().DurationVar(&wait, "wait", 30*time.Second, "maximum time to wait for the scoring service")

	root.AddCommand(newPredictCmd(logger, load, &scoringAddr, &wait))
	root.AddCommand(newInsightsCmd(logger, load, &scoringAddr, &wait))
	return root
}

func newPredictCmd(logger *zap.Logger, load componentsLoader, scoringAddr *string, wait *time.Duration) *cobra.Command {
	var input views.TransactionInput
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Submit one transaction and print the verdict",
		RunE: func(cmd *cobra.Command, _ []string) error {
			comps, err := load(*scoringAddr)
			if err != nil {
				return err
			}
			ctx, traceID := utils.EnsureTraceID(cmd.Context())
			logger.Debug("predict_command", zap.String(pkg.TraceId, traceID))

			if err := comps.Prediction.Submit(ctx, input); err != nil {
				return errors.New(pkg.ToAppError(err).Message)
			}
			waitCtx, cancel := context.WithTimeout(ctx, *wait+waitGrace)
			defer cancel()
			view, err := comps.Prediction.Wait(waitCtx)
			if err != nil {
				comps.Prediction.Reset()
				return errors.New(pkg.MsgServiceTimeout)
			}
			return printPrediction(cmd.OutOrStdout(), view)
		},
	}
	cmd.Flags().StringVar(&input.Amount, "amount", "", "transaction amount")
	cmd.Flags().StringVar(&input.Time, "time", "", "seconds elapsed in the reference window")
	return cmd
}

func newInsightsCmd(logger *zap.Logger, load componentsLoader, scoringAddr *string, wait *time.Duration) *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Load the corpus insights snapshot and print the derived figures",
		RunE: func(cmd *cobra.Command, _ []string) error {
			comps, err := load(*scoringAddr)
			if err != nil {
				return err
			}
			ctx, traceID := utils.EnsureTraceID(cmd.Context())
			logger.Debug("insights_command", zap.String(pkg.TraceId, traceID))

			comps.Insights.Activate(ctx)
			waitCtx, cancel := context.WithTimeout(ctx, *wait+waitGrace)
			defer cancel()
			if _, err := comps.Insights.Wait(waitCtx); err != nil {
				return errors.New(pkg.ErrInsightsUnavailableCode.Message)
			}

			summary := comps.Insights.Summary()
			if summary.Status != pkg.InsightsLoaded {
				return errors.New(pkg.ToAppError(pkg.ErrInsightsUnavailable).Message)
			}
			return printInsights(cmd.OutOrStdout(), *summary.Snapshot, *summary.Metrics)
		},
	}
}

func printPrediction(w io.Writer, view services.PredictionView) error {
	switch view.State {
	case pkg.PredictionSucceeded:
		_, err := fmt.Fprintf(w, "verdict: %s\nconfidence: %.2f%%\n", view.Result.Label, view.Result.ConfidencePercent)
		return err
	case pkg.PredictionFailed:
		return errors.New(view.Message)
	default:
		return fmt.Errorf("prediction ended in state %s", view.State)
	}
}

func printInsights(w io.Writer, s views.InsightsSnapshot, m derived.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"total transactions", fmt.Sprintf("%d", s.Overview.TotalTransactions)},
		{"fraud cases", fmt.Sprintf("%d", s.Overview.FraudCount)},
		{"fraud rate", fmt.Sprintf("%.2f%%", s.Overview.FraudRate)},
		{"average amount", fmt.Sprintf("%.2f", s.AmountStats.AverageTransaction)},
		{"fraud amount vs legitimate", percentText(m.FraudAmountPremiumPercent)},
		{"average time (hours)", m.AverageTimeHours.String()},
		{"low-value fraud share", percentText(m.LowAmountFraudSharePercent)},
		{"medium-value fraud share", percentText(m.MediumAmountFraudSharePercent)},
		{"high-value fraud share", percentText(m.HighAmountFraudSharePercent)},
		{"peak fraud hour", m.PeakFraudHour.String()},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func percentText(f derived.Figure) string {
	if !f.Computable() {
		return f.String()
	}
	return f.String() + "%"
}
