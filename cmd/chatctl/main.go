package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Vovarama1992/tutor_context/internal/ai"
	"github.com/Vovarama1992/tutor_context/internal/config"
	"github.com/Vovarama1992/tutor_context/internal/infra"
	"github.com/Vovarama1992/tutor_context/internal/ports"
)

const cellWidth = 50

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(config.NewViper()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:          "chatctl",
		Short:        "Operator tool for the chatbot database and LLM credential",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("db-driver", "", "database driver (postgres|sqlite)")
	flags.String("database-url", "", "database DSN")
	flags.String("openai-key", "", "OpenAI API key")
	flags.String("openai-model", "", "OpenAI model")
	_ = v.BindPFlag("DB_DRIVER", flags.Lookup("db-driver"))
	_ = v.BindPFlag("DATABASE_URL", flags.Lookup("database-url"))
	_ = v.BindPFlag("OPENAI_API_KEY", flags.Lookup("openai-key"))
	_ = v.BindPFlag("OPENAI_MODEL", flags.Lookup("openai-model"))

	root.AddCommand(newStatsCmd(v), newHistoryCmd(v), newLLMCheckCmd(v))
	return root
}

func newStatsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Conversation totals, latest and most active user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, closeDB, err := openHistory(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer closeDB()

			stats, err := repo.Stats(cmd.Context())
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), stats, time.Now())
			return nil
		},
	}
}

func newHistoryCmd(v *viper.Viper) *cobra.Command {
	var (
		userID string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Dump chat history, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return fmt.Errorf("limit must be positive, got %d", limit)
			}
			repo, closeDB, err := openHistory(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer closeDB()

			var entries []ports.ChatEntry
			if userID != "" {
				entries, err = repo.ListRecent(cmd.Context(), userID, limit)
			} else {
				entries, err = repo.ListAll(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), userID, entries)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "only this user")
	cmd.Flags().IntVar(&limit, "limit", 50, "max rows")
	return cmd
}

func newLLMCheckCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "llm-check",
		Short: "Verify the OpenAI credential with one completion",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromViper(v)
			out := cmd.OutOrStdout()
			if cfg.LLM.APIKey == "" {
				fmt.Fprintln(out, "error: OPENAI_API_KEY is not set")
				return ai.ErrNotConfigured
			}

			base, _ := zap.NewDevelopment()
			defer base.Sync()
			gw := ai.NewGateway(cfg.LLM, logger.NewZapLogger(base.Sugar()))

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			answer, err := gw.Ping(ctx)
			fmt.Fprintln(out, describeCheck(answer, err))
			return err
		},
	}
}

func openHistory(ctx context.Context, v *viper.Viper) (ports.HistoryRepo, func(), error) {
	cfg := config.FromViper(v)
	db, err := infra.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return infra.NewHistoryRepo(db), func() { _ = db.Close() }, nil
}

func printStats(w io.Writer, s *ports.HistoryStats, now time.Time) {
	fmt.Fprintf(w, "Total conversations: %s\n", humanize.Comma(int64(s.TotalConversations)))
	fmt.Fprintf(w, "Unique users:        %s\n", humanize.Comma(int64(s.UniqueUsers)))

	if s.LatestAt != nil {
		fmt.Fprintf(w, "Latest conversation: %s by %s\n", humanize.RelTime(*s.LatestAt, now, "ago", "from now"), s.LatestUserID)
	} else {
		fmt.Fprintln(w, "Latest conversation: none")
	}

	if s.MostActiveUserID != "" {
		fmt.Fprintf(w, "Most active user:    %s (%s conversations)\n", s.MostActiveUserID, humanize.Comma(int64(s.MostActiveCount)))
	}
}

func printHistory(w io.Writer, userID string, entries []ports.ChatEntry) {
	if len(entries) == 0 {
		if userID != "" {
			fmt.Fprintf(w, "No chat history found for user: %s\n", userID)
		} else {
			fmt.Fprintln(w, "No chat history found in the database.")
		}
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "USER\tQUESTION\tANSWER\tCREATED AT")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			e.UserID, cell(e.Question), cell(e.Answer), e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	tw.Flush()
}

// cell режет текст до ширины колонки, по рунам.
func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= cellWidth {
		return s
	}
	return string(r[:cellWidth]) + "..."
}

func describeCheck(answer string, err error) string {
	if err == nil {
		return "ok: API key is valid\nresponse: " + answer
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusUnauthorized {
		return "error: invalid API key"
	}

	switch ai.Classify(err) {
	case ai.KindRateLimit:
		return "error: rate limit exceeded (the key is valid)"
	case ai.KindQuota:
		return "error: quota exhausted (the key is valid)"
	}
	return "error: " + err.Error()
}
