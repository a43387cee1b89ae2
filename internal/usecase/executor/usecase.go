package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"research-agent/internal/application/port/input"
	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"

	"github.com/google/uuid"
)

var _ input.TaskExecutor = (*UseCase)(nil)

const (
	DefaultMaxIterations = 15
	maxObservationLen    = 20000
)

type Config struct {
	MaxIterations    int
	MaxExecutionTime time.Duration
}

type UseCase struct {
	llm      output.LLMPort
	tools    output.ToolRegistry
	prompt   output.PromptBuilder
	logger   output.LoggerPort
	progress output.ProgressPort
	cfg      Config
}

func New(
	llm output.LLMPort,
	tools output.ToolRegistry,
	prompt output.PromptBuilder,
	logger output.LoggerPort,
	progress output.ProgressPort,
	cfg Config,
) *UseCase {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if progress == nil {
		progress = nopProgress{}
	}
	return &UseCase{
		llm:      llm,
		tools:    tools,
		prompt:   prompt,
		logger:   logger,
		progress: progress,
		cfg:      cfg,
	}
}

func (uc *UseCase) Execute(ctx context.Context, req input.ExecuteRequest) (*input.ExecuteResult, error) {
	if uc.cfg.MaxExecutionTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.cfg.MaxExecutionTime)
		defer cancel()
	}

	sm := newMachine(uc.logger)
	toolDefs := uc.tools.Definitions()
	var steps entity.Scratchpad

	fail := func(iteration int, err error) (*input.ExecuteResult, error) {
		sm.to(input.StateFailed)
		uc.logger.Error("Agent failed", "iteration", iteration, "error", err)
		return nil, &RunError{Iterations: iteration, Steps: steps, Err: err}
	}

	for iteration := 1; iteration <= uc.cfg.MaxIterations; iteration++ {
		uc.logger.Debug("Starting iteration", "iteration", iteration)
		uc.progress.ShowIteration(ctx, iteration, uc.cfg.MaxIterations)

		if err := uc.budgetErr(ctx); err != nil {
			return fail(iteration, err)
		}

		messages, err := uc.prompt.Build(req.History, req.Query, steps)
		if err != nil {
			return fail(iteration, fmt.Errorf("build prompt: %w", err))
		}

		resp, err := uc.llm.Chat(ctx, output.ChatRequest{
			Messages:    messages,
			Tools:       toolDefs,
			Temperature: 0.0,
		})
		if err != nil {
			if budgetErr := uc.budgetErr(ctx); budgetErr != nil {
				return fail(iteration, budgetErr)
			}
			return fail(iteration, fmt.Errorf("%w: %w", entity.ErrModelCall, err))
		}

		msg := resp.Message
		if len(msg.ToolCalls) == 0 {
			sm.to(input.StateDone)
			uc.logger.Info("Agent finished", "iterations", iteration, "steps", len(steps))
			return &input.ExecuteResult{
				Output:     msg.Content,
				Steps:      steps,
				Iterations: iteration,
				State:      sm.state,
			}, nil
		}

		if strings.TrimSpace(msg.Content) != "" {
			uc.progress.ShowThinking(ctx, msg.Content)
			steps = append(steps, entity.ModelUtterance(msg.Content))
		}

		sm.to(input.StateExecutingTool)
		for _, tc := range msg.ToolCalls {
			if tc.ID == "" {
				tc.ID = "call_" + uuid.NewString()
			}
			steps = append(steps, entity.ToolInvocation(tc.ID, tc.Name, tc.Arguments))

			observation, isError := uc.executeTool(ctx, tc)
			steps = append(steps, entity.ToolResult(tc.ID, tc.Name, observation, isError))
		}
		sm.to(input.StateAwaitingModel)
	}

	return fail(uc.cfg.MaxIterations, fmt.Errorf("%w: max iterations (%d) exceeded", entity.ErrBudgetExceeded, uc.cfg.MaxIterations))
}

// executeTool never fails the loop: errors come back as observation text.
func (uc *UseCase) executeTool(ctx context.Context, tc entity.ToolCall) (string, bool) {
	uc.progress.ShowToolStart(ctx, tc.Name, tc.Arguments)

	tool, ok := uc.tools.Get(entity.ToolName(tc.Name))
	if !ok {
		err := entity.NewToolError(tc.Name, fmt.Errorf("%w: %s", entity.ErrUnknownTool, tc.Name))
		uc.logger.Warn("Unknown tool called", "name", tc.Name)
		uc.progress.ShowToolResult(ctx, tc.Name, err.Error(), true)
		return "Error: " + err.Error(), true
	}

	uc.logger.Info("Executing tool", "name", tc.Name, "args", tc.Arguments)
	start := time.Now()

	result, err := tool.Execute(ctx, tc.Arguments)
	if err != nil {
		uc.logger.Error("Tool execution failed", "name", tc.Name, "error", err, "duration_ms", time.Since(start).Milliseconds())
		uc.progress.ShowToolResult(ctx, tc.Name, err.Error(), true)
		return "Error: " + err.Error(), true
	}

	if len(result) > maxObservationLen {
		result = strings.ToValidUTF8(result[:maxObservationLen], "") + "\n... (truncated)"
	}

	uc.logger.Debug("Tool completed", "name", tc.Name, "resultLen", len(result), "duration_ms", time.Since(start).Milliseconds())
	uc.progress.ShowToolResult(ctx, tc.Name, result, false)
	return result, false
}

func (uc *UseCase) budgetErr(ctx context.Context) error {
	err := ctx.Err()
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && uc.cfg.MaxExecutionTime > 0 {
		return fmt.Errorf("%w: max execution time (%s) exceeded", entity.ErrBudgetExceeded, uc.cfg.MaxExecutionTime)
	}
	return err
}

type nopProgress struct{}

func (nopProgress) ShowIteration(context.Context, int, int)              {}
func (nopProgress) ShowToolStart(context.Context, string, string)        {}
func (nopProgress) ShowToolResult(context.Context, string, string, bool) {}
func (nopProgress) ShowThinking(context.Context, string)                 {}
