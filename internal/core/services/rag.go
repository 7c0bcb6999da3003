package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragline-cli/internal/core/domain"
	"github.com/custodia-labs/ragline-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragline-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragline-cli/internal/logger"
)

// Ensure RAGService implements the interface.
var _ driving.QueryService = (*RAGService)(nil)

// historyLimit is how many recent messages accompany the synthesized
// user turn.
const historyLimit = 10

// reformulateTurns is how many recent turns feed query reformulation.
const reformulateTurns = 3

// contextDelimiter separates document blocks in the assembled context.
const contextDelimiter = "\n---\n"

// noContextAnswer is returned when retrieval finds nothing; the LLM is
// not invoked.
const noContextAnswer = "I could not find any relevant information in your documents to answer that question. Try ingesting more documents or rephrasing your query."

// systemPrompt frames every generation call.
const systemPrompt = `You are a helpful assistant that answers questions about the user's documents.
Use only the provided document context to answer. When the context includes image descriptions, you may refer to them.
If the context does not contain the answer, say so rather than guessing.`

// reformulatePrompt turns a follow-up into a standalone question.
const reformulatePrompt = `Given the conversation above, rewrite the user's latest question so it can be understood without the conversation. Keep it short. Return only the rewritten question.

Latest question: %s`

// RAGService runs the two-stage retrieve-then-generate pipeline.
type RAGService struct {
	index   driven.VectorIndex
	llm     driven.LLMService
	threads driven.ThreadStore
	counter driven.TokenCounter

	tokenLimit  int
	maxTokens   int
	temperature float64

	// threadLocks serializes turns per thread so concurrent appends
	// cannot interleave a conversation.
	threadLocks sync.Map
}

// RAGConfig tunes the pipeline.
type RAGConfig struct {
	// TokenLimit is the per-thread budget checked before retrieval.
	TokenLimit int

	// MaxTokens caps each completion.
	MaxTokens int

	// Temperature is passed through to the LLM.
	Temperature float64
}

// NewRAGService creates a new RAG pipeline service.
func NewRAGService(
	index driven.VectorIndex,
	llm driven.LLMService,
	threads driven.ThreadStore,
	counter driven.TokenCounter,
	cfg RAGConfig,
) *RAGService {
	if cfg.TokenLimit <= 0 {
		cfg.TokenLimit = 4000
	}
	return &RAGService{
		index:       index,
		llm:         llm,
		threads:     threads,
		counter:     counter,
		tokenLimit:  cfg.TokenLimit,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// pipelineState carries one turn through the pipeline stages. It is
// passed by value: each stage returns an updated copy, so no stage can
// observe a later stage's writes.
type pipelineState struct {
	threadID    string
	query       string // what the user asked
	searchQuery string // what retrieval and generation run on, possibly reformulated
	history     []domain.Message

	retrieved   []domain.RetrievedChunk
	contextText string

	answer    string
	generated bool // true when the answer came from the LLM
}

// Query runs one turn of the pipeline. It always returns a
// QueryResult: failures inside the pipeline degrade the answer instead
// of surfacing. The errors it does return are structural, raised
// before the pipeline runs.
func (s *RAGService) Query(ctx context.Context, threadID, query string, opts domain.QueryOptions) (*domain.QueryResult, error) {
	return s.run(ctx, threadID, query, query, opts)
}

// QueryWithHistory reformulates a follow-up into a standalone question
// using recent turns, then runs the pipeline with it. The original
// question is what gets stored and echoed in the result.
func (s *RAGService) QueryWithHistory(ctx context.Context, threadID, query string, opts domain.QueryOptions) (*domain.QueryResult, error) {
	searchQuery := query
	if threadID != "" {
		if reformulated, ok := s.reformulate(ctx, threadID, query); ok {
			searchQuery = reformulated
		}
	}
	return s.run(ctx, threadID, query, searchQuery, opts)
}

func (s *RAGService) run(ctx context.Context, threadID, query, searchQuery string, opts domain.QueryOptions) (result *domain.QueryResult, err error) {
	start := time.Now()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	searchQuery = strings.TrimSpace(searchQuery)
	if searchQuery == "" {
		searchQuery = query
	}

	if threadID == "" {
		threadID = uuid.NewString()
		logger.Debug("new thread %s", threadID)
	}

	if opts.Filter != nil {
		if err := opts.Filter.Validate(); err != nil {
			return nil, err
		}
	}

	unlock := s.lockThread(threadID)
	defer unlock()

	// A pipeline turn must always produce a result; a panic in any
	// stage degrades to an error answer.
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("pipeline panicked: %v", r)
			result = &domain.QueryResult{
				Query:          query,
				Answer:         fmt.Sprintf("I encountered an internal error while processing your question: %v", r),
				ThreadID:       threadID,
				ProcessingTime: time.Since(start),
			}
			err = nil
		}
	}()

	history, err := s.loadHistory(ctx, threadID)
	if err != nil {
		return nil, err
	}

	if err := s.checkBudget(query, history); err != nil {
		return nil, err
	}

	state := pipelineState{
		threadID:    threadID,
		query:       query,
		searchQuery: searchQuery,
		history:     history,
	}

	state = s.retrieve(ctx, state, opts)
	state = s.generate(ctx, state)

	if state.generated {
		if err := s.persistTurn(ctx, state, time.Since(start)); err != nil {
			logger.Warn("failed to persist turn: %v", err)
		}
	}

	return &domain.QueryResult{
		Query:          query,
		Answer:         state.answer,
		Retrieved:      state.retrieved,
		TotalResults:   len(state.retrieved),
		ProcessingTime: time.Since(start),
		ThreadID:       threadID,
		TokensUsed:     s.counter.Count(query) + s.counter.Count(state.answer),
	}, nil
}

// lockThread acquires the per-thread mutex and returns its unlock.
func (s *RAGService) lockThread(threadID string) func() {
	actual, _ := s.threadLocks.LoadOrStore(threadID, &sync.Mutex{})
	mu := actual.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// loadHistory fetches the thread's messages. A missing thread is an
// empty history, not an error.
func (s *RAGService) loadHistory(ctx context.Context, threadID string) ([]domain.Message, error) {
	thread, err := s.threads.Get(ctx, threadID)
	if err != nil {
		if errors.Is(err, domain.ErrThreadNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return thread.Messages, nil
}

// checkBudget enforces the token limit before any retrieval work.
func (s *RAGService) checkBudget(query string, history []domain.Message) error {
	queryTokens := s.counter.Count(query)
	if queryTokens > s.tokenLimit {
		return fmt.Errorf("%w: query is %d tokens, limit is %d", domain.ErrTokenBudget, queryTokens, s.tokenLimit)
	}

	total := queryTokens
	for i := range history {
		total += history[i].TokenCount
	}
	if total > s.tokenLimit {
		return fmt.Errorf("%w: conversation would reach %d tokens, limit is %d", domain.ErrTokenBudget, total, s.tokenLimit)
	}
	return nil
}

// retrieve is the first pipeline stage: similarity search plus context
// assembly.
func (s *RAGService) retrieve(ctx context.Context, state pipelineState, opts domain.QueryOptions) pipelineState {
	logger.Section("Retrieval")
	logger.Debug("search query: %q", state.searchQuery)

	state.retrieved = s.index.Query(ctx, state.searchQuery, opts)
	logger.Info("retrieved %d chunks", len(state.retrieved))

	state.contextText = assembleContext(state.retrieved)
	return state
}

// assembleContext renders retrieved chunks as ranked document blocks.
func assembleContext(retrieved []domain.RetrievedChunk) string {
	if len(retrieved) == 0 {
		return ""
	}

	blocks := make([]string, 0, len(retrieved))
	for i, chunk := range retrieved {
		var b strings.Builder
		if chunk.Type == domain.ChunkTypeImage {
			fmt.Fprintf(&b, "[Document %d] (Image from %s", i+1, chunk.FileName)
			if chunk.PageNumber > 0 {
				fmt.Fprintf(&b, ", Page %d", chunk.PageNumber)
			}
			b.WriteString(")\n")
			fmt.Fprintf(&b, "Description: %s\n", chunk.Content)
		} else {
			fmt.Fprintf(&b, "[Document %d] (Text from %s", i+1, chunk.FileName)
			if chunk.PageNumber > 0 {
				fmt.Fprintf(&b, ", Page %d", chunk.PageNumber)
			}
			b.WriteString(")\n")
			fmt.Fprintf(&b, "Content: %s\n", chunk.Content)
		}
		fmt.Fprintf(&b, "Relevance Score: %.2f", chunk.RelevanceScore)
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, contextDelimiter)
}

// generate is the second pipeline stage: one LLM round trip over the
// assembled context and recent history.
func (s *RAGService) generate(ctx context.Context, state pipelineState) pipelineState {
	logger.Section("Generation")

	if state.contextText == "" {
		logger.Info("no relevant chunks, skipping generation")
		state.answer = noContextAnswer
		state.generated = false
		return state
	}

	messages := []driven.ChatMessage{{Role: "system", Content: systemPrompt}}
	for _, msg := range tail(state.history, historyLimit) {
		messages = append(messages, driven.ChatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	// The reformulated question drives generation too, so the LLM sees
	// the same standalone form that retrieval ran on. Only persistence
	// and the echoed result keep the question as asked.
	messages = append(messages, driven.ChatMessage{
		Role: "user",
		Content: fmt.Sprintf("Context from the user's documents:\n%s\n\nQuestion: %s",
			state.contextText, state.searchQuery),
	})

	answer, err := s.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		logger.Warn("generation failed: %v", err)
		state.answer = fmt.Sprintf("I encountered an error while generating a response: %v", err)
		state.generated = false
		return state
	}

	state.answer = answer
	state.generated = true
	return state
}

// persistTurn appends the user/assistant pair to the thread.
func (s *RAGService) persistTurn(ctx context.Context, state pipelineState, elapsed time.Duration) error {
	now := time.Now().UTC()
	user := domain.Message{
		Role:       domain.RoleUser,
		Content:    state.query,
		Timestamp:  now,
		TokenCount: s.counter.Count(state.query),
	}
	assistant := domain.Message{
		Role:            domain.RoleAssistant,
		Content:         state.answer,
		Timestamp:       now,
		TokenCount:      s.counter.Count(state.answer),
		RetrievedChunks: state.retrieved,
		ProcessingTime:  elapsed,
	}
	return s.threads.Append(ctx, state.threadID, domain.ThreadTitle(state.query), user, assistant)
}

// reformulate asks the LLM to turn a follow-up into a standalone
// question using recent turns. Returns false when there is no usable
// history or the LLM fails, in which case the caller keeps the
// original question.
func (s *RAGService) reformulate(ctx context.Context, threadID, query string) (string, bool) {
	thread, err := s.threads.Get(ctx, threadID)
	if err != nil || len(thread.Messages) == 0 {
		return "", false
	}

	messages := make([]driven.ChatMessage, 0, reformulateTurns*2+1)
	for _, msg := range tail(thread.Messages, reformulateTurns*2) {
		messages = append(messages, driven.ChatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	messages = append(messages, driven.ChatMessage{
		Role:    "user",
		Content: fmt.Sprintf(reformulatePrompt, query),
	})

	rewritten, err := s.llm.Chat(ctx, messages, driven.ChatOptions{MaxTokens: 100, Temperature: 0.3})
	if err != nil {
		logger.Warn("reformulation failed, keeping original query: %v", err)
		return "", false
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return "", false
	}
	logger.Debug("reformulated %q to %q", query, rewritten)
	return rewritten, true
}

// tail returns the last n elements of a message slice.
func tail(messages []domain.Message, n int) []domain.Message {
	if len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}
