package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"

	"github.com/eduardolat/openroutergo"
	"github.com/jobs-search/internal/models"
	"github.com/jobs-search/internal/parser"
)

// onlineSuffix makes OpenRouter run a web search before the model answers.
const onlineSuffix = ":online"

var (
	ErrInvalidAPIKey = errors.New("invalid API key")
	ErrConnectivity  = errors.New("could not reach the AI service")
	ErrEmptyResponse = errors.New("no response choices received from API")
)

const systemMessage = "You are a job search assistant with live web access. You look up current, real job postings and report them in the exact plain-text format the user asks for. Never invent postings or links."

type OpenRouterService struct {
	model   string
	apiKey  string
	baseURL string
}

func NewOpenRouterService(model string, apiKey string, baseURL string) OpenRouterService {
	return OpenRouterService{
		model:   model,
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// SearchModel returns model with web search enabled.
func SearchModel(model string) string {
	if strings.HasSuffix(model, onlineSuffix) {
		return model
	}
	return model + onlineSuffix
}

// BuildPrompt turns a query into the user message sent to the model.
func BuildPrompt(q models.SearchQuery) string {
	location := strings.TrimSpace(q.Location)
	where := fmt.Sprintf("located in or near %s (remote roles open to that area also count)", location)
	if location == "" {
		where = "in any location, including remote"
	}

	return fmt.Sprintf(`Search the web for current job openings for "%s" %s.

Return up to 10 real, currently open postings. For each posting output one block in exactly this format:

Title: <job title>
Company: <company name>
Location: <city, region or Remote>
Description: <two or three sentences on the role and key requirements>
Link: <direct URL to the posting or application page>

Rules:
- Separate blocks with a line containing only ---
- Leave a field empty after the colon if you could not find it. Do not drop the line.
- Plain text only. No markdown tables, no numbering, no commentary before or after the blocks.
- If you find no matching postings, reply with exactly %s and nothing else.`, strings.TrimSpace(q.Keywords), where, parser.NoJobsMarker)
}

// Search runs one chat completion with web search enabled and returns the raw reply text.
func (s *OpenRouterService) Search(ctx context.Context, q models.SearchQuery) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client, err := openroutergo.
		NewClient().
		WithBaseURL(s.baseURL).
		WithAPIKey(s.apiKey).
		Create()
	if err != nil {
		return "", fmt.Errorf("failed to create client: %w", err)
	}

	model := SearchModel(s.model)
	slog.Debug("sending job search request",
		slog.String("model", model),
		slog.String("keywords", q.Keywords),
		slog.String("location", q.Location),
	)

	_, resp, err := client.
		NewChatCompletion().
		WithContext(ctx).
		WithModel(model).
		WithSystemMessage(systemMessage).
		WithUserMessage(BuildPrompt(q)).
		Execute()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("job search interrupted: %w", ctxErr)
		}
		return "", classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := string(resp.Choices[0].Message.Content)
	slog.Debug("received job search reply", slog.Int("chars", len(content)))

	return content, nil
}

// authMarkers identify a rejected key. A 403 is not one of them: OpenRouter
// answers 403 for moderated input too.
var authMarkers = []string{
	"status code 401",
	"status 401",
	"401 unauthorized",
	"invalid api key",
	"no auth credentials",
	"user not found",
}

// classifyError maps client failures onto the user-facing error kinds.
func classifyError(err error) error {
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range authMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", ErrInvalidAPIKey, err)
		}
	}
	for _, marker := range []string{"connection refused", "no such host", "timeout", "i/o timeout", "network is unreachable"} {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", ErrConnectivity, err)
		}
	}

	return fmt.Errorf("failed to execute completion: %w", err)
}
