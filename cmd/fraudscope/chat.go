package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"fraudscope/internal/api"
	"fraudscope/internal/chat"
	"fraudscope/internal/cli"
	"fraudscope/internal/model"
	"fraudscope/internal/viewmodel"
)

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive assistant for the current fraud results",
		Long: `Start a conversation with the backend assistant. When predictions
are available they are attached as context so the assistant can answer
questions about the current batch. Type "exit", "quit" or "reset" as
commands; Ctrl+C leaves at any time.`,
		RunE: runChat,
	}
	cmd.Flags().Bool("with-results", true, "Attach the current batch results as context")
	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var contextFn chat.ContextFunc
	if withResults, _ := cmd.Flags().GetBool("with-results"); withResults {
		if resp, predErr := client.PredictFraud(ctx); predErr == nil && resp.Success {
			contextFn = resultsContext(resp.Predictions)
			slog.Info(cli.FormatInfo(fmt.Sprintf("Context attached: %d scored providers", len(resp.Predictions))))
		} else {
			slog.Info(cli.FormatInfo("No batch results available, chatting without context"))
		}
	}

	session := chat.NewSession(client, contextFn)
	reader := cli.NewLineReader(os.Stdin)

	slog.Info(cli.FormatTitle("Fraud assistant"))
	slog.Info(cli.SubtleStyle.Render(`Commands: "exit" or "quit" to leave, "reset" to clear the conversation`))

	for {
		fmt.Fprint(os.Stderr, cli.PromptStyle.Render("you> "))
		line, err := reader.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, cli.ErrInputCancelled) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "reset":
			session.Reset()
			slog.Info(cli.FormatInfo("Conversation cleared"))
			continue
		}

		result, err := session.Send(ctx, line)
		if err != nil {
			slog.Error(cli.FormatError(err.Error()))
			continue
		}
		printChatResult(session, result)
	}
}

func printChatResult(session *chat.Session, result api.ChatResult) {
	prefix := cli.RobotIcon + " "
	switch result.Kind {
	case api.ChatFallback:
		slog.Warn(cli.FormatWarning("assistant unavailable, canned reply follows"))
		fmt.Fprintln(os.Stderr, prefix+result.Text)
	case api.ChatRefusal:
		fmt.Fprintln(os.Stderr, prefix+cli.SubtleStyle.Render(result.Text))
	case api.ChatError:
		slog.Error(cli.FormatError(result.Text))
	default:
		fmt.Fprintln(os.Stderr, prefix+result.Text)
	}

	if rl := session.RateLimit(); rl != nil && rl.Remaining <= 2 {
		slog.Warn(cli.FormatWarning(fmt.Sprintf(
			"rate limit: %d requests remaining, resets after %s", rl.Remaining, rl.ResetAfter)))
	}
	if n := session.FallbackCount(); n >= 3 {
		slog.Warn(cli.FormatWarning(fmt.Sprintf("assistant degraded (%d fallback replies this session)", n)))
	}
}

// resultsContext captures the current batch as chatbot context the way the
// dashboard page attaches it.
func resultsContext(predictions []model.Prediction) chat.ContextFunc {
	return func() map[string]any {
		agg := viewmodel.Aggregate(predictions, nil)
		top := viewmodel.TopFraudProviders(predictions)
		names := make([]string, 0, len(top))
		for _, p := range top {
			names = append(names, p.Provider)
		}
		return map[string]any{
			"total_providers": agg.TotalProviders,
			"fraud_count":     agg.FraudCount,
			"fraud_rate_pct":  agg.FraudRatePct,
			"top_fraud":       names,
		}
	}
}
