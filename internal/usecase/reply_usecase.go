package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"civiq/internal/domain/service"
	"civiq/pkg/logger"
)

const (
	replyCount     = 3
	replyMaxTokens = 200
)

type ReplyUseCase struct {
	generator service.TextGenerator
	aiTimeout time.Duration
	log       logger.Logger
}

func NewReplyUseCase(generator service.TextGenerator, aiTimeout time.Duration, log logger.Logger) *ReplyUseCase {
	return &ReplyUseCase{generator: generator, aiTimeout: aiTimeout, log: log}
}

// GenerateReplies drafts three short admin replies to a report. It always
// returns three replies; template replies stand in when generation fails.
func (uc *ReplyUseCase) GenerateReplies(ctx context.Context, issueType, description string) []string {
	if uc.generator == nil {
		return FallbackReplies(issueType)
	}

	ctx, cancel := context.WithTimeout(ctx, uc.aiTimeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"You are a helpful municipal administrator answering a citizen's report.\n"+
			"Issue type: %s\nDescription: %s\n"+
			"Write %d short, polite and distinct replies, one per line, without numbering.",
		issueType, description, replyCount,
	)

	raw, err := uc.generator.Generate(ctx, prompt, replyMaxTokens)
	if err != nil {
		uc.log.Warn("reply generation failed, using templates", "error", err)
		return FallbackReplies(issueType)
	}

	replies := make([]string, 0, replyCount)
	for _, line := range strings.Split(raw, "\n") {
		if reply := cleanGeneratedLine(line); reply != "" {
			replies = append(replies, reply)
		}
		if len(replies) == replyCount {
			break
		}
	}
	if len(replies) < replyCount {
		return FallbackReplies(issueType)
	}
	return replies
}

func FallbackReplies(issueType string) []string {
	issue := strings.TrimSpace(issueType)
	if issue == "" {
		issue = "reported"
	}
	return []string{
		fmt.Sprintf("Thank you for reporting this %s issue. Our team has received it and will review it shortly.", issue),
		fmt.Sprintf("We have assigned a crew to the %s issue you reported and will keep you updated on progress.", issue),
		fmt.Sprintf("The %s issue you reported has been addressed. Thank you for helping keep our city safe.", issue),
	}
}
