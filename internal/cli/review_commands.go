package cli

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bravo6co-debug/ai-riview/core/port/in"
	"github.com/bravo6co-debug/ai-riview/core/service/reply"
	"github.com/bravo6co-debug/ai-riview/core/service/sentiment"
	"github.com/bravo6co-debug/ai-riview/internal/bootstrap"
)

// newScoreCmd runs the rule-based stages only. Needs no configuration.
func newScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <review text>",
		Short: "Rule-based score and topics, no cache or model",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := reviewText(args)
			if err != nil {
				return err
			}
			quick := sentiment.NewQuickScorer().Score(text)
			topics := sentiment.NewTopicExtractor().Extract(text)
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"quick":      quick,
				"topics":     topics,
				"escalation": sentiment.DefaultEscalationPolicy().Reason(quick, topics, text),
			})
		},
	}
}

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <review text>",
		Short: "Run the full analysis pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := reviewText(args)
			if err != nil {
				return err
			}
			return withDependencies(cmd.Context(), func(deps *bootstrap.Dependencies) error {
				result, err := deps.Analyzer.Analyze(cmd.Context(), text)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), result)
			})
		},
	}
}

func newReplyCmd() *cobra.Command {
	var (
		brand string
		tone  string
		user  string
	)
	cmd := &cobra.Command{
		Use:   "reply <review text>",
		Short: "Analyze a review and draft an owner reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := reviewText(args)
			if err != nil {
				return err
			}
			if tone != "" && !reply.IsBrandTone(tone) {
				return usageError{"unknown --tone " + tone}
			}
			opts := &in.ReplyOptions{BrandContext: brand, BrandTone: tone}
			if user != "" {
				id, err := uuid.Parse(user)
				if err != nil {
					return usageError{"invalid --user: " + err.Error()}
				}
				opts.UserID = id
				opts.SaveHistory = true
			}

			return withDependencies(cmd.Context(), func(deps *bootstrap.Dependencies) error {
				result, err := deps.Reply.GenerateReply(cmd.Context(), text, opts)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().StringVar(&brand, "brand", "", "business type, e.g. cafe, restaurant, 카페")
	cmd.Flags().StringVar(&tone, "tone", "", "brand tone: friendly, professional, casual, warm, energetic, luxury, minimalist")
	cmd.Flags().StringVar(&user, "user", "", "bill the call and save history for this user id")
	return cmd
}
