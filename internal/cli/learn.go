package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/garden/internal/engine"
	"github.com/roach88/garden/internal/garden"
)

// CardView is a knowledge card and, once accepted, the balance after it.
type CardView struct {
	garden.KnowledgeItem
	Fallback bool `json:"fallback"`
	Learned  bool `json:"learned"`
	Sunlight int  `json:"sunlight,omitempty"`
}

func (v CardView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "📖 [%s] %s\n   (%s, +%d ☀️)", v.Category, v.Content, v.Source, v.Reward)
	if v.Learned {
		fmt.Fprintf(&b, "\n✨ Learned! Sunlight: %d", v.Sunlight)
	}
	return b.String()
}

// NewLearnCommand creates the learn command.
func NewLearnCommand(rootOpts *RootOptions) *cobra.Command {
	var accept bool

	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Draw a knowledge card and learn it for sunlight",
		Long: `Draw a knowledge card from the AI provider (or the built-in fallback when it
is unavailable). In text mode you are asked whether to learn it; --accept
learns it without asking. Each card is credited once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(s *session) error {
				offer := s.eng.FetchCard(s.ctx)
				view := CardView{KnowledgeItem: offer.Item, Fallback: offer.UsedFallback}

				if !accept && s.format.Format == FormatText {
					fmt.Fprintln(s.format.Writer, view)
					fmt.Fprint(s.format.Writer, "Learn it? [y/N]: ")
					accept = confirmed(cmd)
					if !accept {
						fmt.Fprintln(s.format.Writer, "Skipped.")
						return nil
					}
					res, err := learnOffer(s, offer)
					if err != nil {
						return err
					}
					fmt.Fprintf(s.format.Writer, "✨ Learned! Sunlight: %d\n", res.Sunlight)
					return nil
				}

				if accept {
					res, err := learnOffer(s, offer)
					if err != nil {
						return err
					}
					view.Learned = true
					view.Sunlight = res.Sunlight
				}
				return s.format.Success(view)
			})
		},
	}

	cmd.Flags().BoolVar(&accept, "accept", false, "learn the card without asking")

	return cmd
}

func learnOffer(s *session, offer *engine.CardOffer) (engine.LearnResult, error) {
	res, err := s.eng.Learn(s.ctx, offer)
	if err != nil {
		return engine.LearnResult{}, s.engineFailure(err)
	}
	return res, nil
}

// confirmed reads one answer line from the command's input. EOF is a no.
func confirmed(cmd *cobra.Command) bool {
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// CheckInView reports a committed check-in.
type CheckInView struct {
	Notification   string `json:"notification"`
	Goal           string `json:"goal"`
	KnowledgePoint string `json:"knowledge_point"`
	FlowerLanguage string `json:"flower_language"`
	Timestamp      string `json:"timestamp"`
	Points         int    `json:"points"`
	Fallback       bool   `json:"fallback"`
	Sunlight       int    `json:"sunlight"`
}

func (v CheckInView) String() string {
	return fmt.Sprintf("%s\n🌸 %s\n   %s %s (+%d ☀️, now %d)",
		v.Notification, v.FlowerLanguage, v.Timestamp, v.Goal, v.Points, v.Sunlight)
}

// NewCheckInCommand creates the checkin command.
func NewCheckInCommand(rootOpts *RootOptions) *cobra.Command {
	var goal, learned string

	cmd := &cobra.Command{
		Use:   "checkin",
		Short: "Record a study session and grow a flower language",
		Long: fmt.Sprintf(`Record what you set out to do and what you learned. Earns %d sunlight and
attaches a generated flower language to your first plant. Both flags are
required and must not be blank.`, garden.CheckInReward),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			if garden.NormalizeText(goal) == "" {
				return formatter.Fail(ExitCommandError, ErrCodeInvalidInput, "--goal must not be empty", nil)
			}
			if garden.NormalizeText(learned) == "" {
				return formatter.Fail(ExitCommandError, ErrCodeInvalidInput, "--learned must not be empty", nil)
			}

			return withSession(cmd, rootOpts, func(s *session) error {
				formatter.VerboseLog("generating flower language for %q", learned)
				res, err := s.eng.CheckIn(s.ctx, goal, learned)
				if err != nil {
					return s.engineFailure(err)
				}
				return s.format.Success(CheckInView{
					Notification:   res.Notification,
					Goal:           res.Record.Goal,
					KnowledgePoint: res.FlowerLanguage.KnowledgePoint,
					FlowerLanguage: res.FlowerLanguage.Message,
					Timestamp:      res.Record.Timestamp,
					Points:         res.Record.Points,
					Fallback:       res.UsedFallback,
					Sunlight:       res.Sunlight,
				})
			})
		},
	}

	cmd.Flags().StringVar(&goal, "goal", "", "what you set out to do")
	cmd.Flags().StringVar(&learned, "learned", "", "the knowledge point you learned")

	return cmd
}
