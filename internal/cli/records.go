package cli

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/roach88/garden/internal/garden"
)

// CheckInList is the check-in history, newest first.
type CheckInList []garden.CheckInRecord

func (v CheckInList) String() string {
	if len(v) == 0 {
		return "No check-ins yet."
	}
	return strings.Join(lo.Map(v, func(r garden.CheckInRecord, _ int) string {
		return fmt.Sprintf("  %s  %s  +%d", r.Timestamp, r.Goal, r.Points)
	}), "\n")
}

// Collection is the learned knowledge cards, newest first.
type Collection []garden.KnowledgeItem

func (v Collection) String() string {
	if len(v) == 0 {
		return "Your collection is empty."
	}
	return strings.Join(lo.Map(v, func(k garden.KnowledgeItem, _ int) string {
		return fmt.Sprintf("  %s [%s] %s (%s, +%d)", k.Date, k.Category, k.Content, k.Source, k.Reward)
	}), "\n")
}

// FlowerList is every flower language across plants, newest first.
type FlowerList []garden.FlowerLanguage

func (v FlowerList) String() string {
	if len(v) == 0 {
		return "No flower languages yet."
	}
	return strings.Join(lo.Map(v, func(f garden.FlowerLanguage, _ int) string {
		return fmt.Sprintf("  %s 【%s】 %s", f.Date, f.KnowledgePoint, f.Message)
	}), "\n")
}

// nonNil keeps empty lists as [] in JSON output.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List recent check-ins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(s *session) error {
				return s.format.Success(CheckInList(nonNil(s.eng.Snapshot().CheckInHistory.Items())))
			})
		},
	}
}

// NewCollectionCommand creates the collection command.
func NewCollectionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "collection",
		Short: "List learned knowledge cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(s *session) error {
				return s.format.Success(Collection(nonNil(s.eng.Snapshot().Collection.Items())))
			})
		},
	}
}

// NewFlowersCommand creates the flowers command.
func NewFlowersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "flowers",
		Short: "List flower languages from every plant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(s *session) error {
				return s.format.Success(FlowerList(nonNil(s.eng.Snapshot().AllFlowerLanguages())))
			})
		},
	}
}
