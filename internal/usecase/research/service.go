package research

import (
	"context"
	"fmt"
	"strings"

	"research-agent/internal/application/port/input"
	"research-agent/internal/application/port/output"
)

var _ input.ResearchExecutor = (*Service)(nil)

// Service runs the agent loop for one query and parses the terminal answer.
// A parse failure is reported in the ResearchReport, not returned as an error.
type Service struct {
	executor input.TaskExecutor
	parser   output.ResultParser
	logger   output.LoggerPort
}

func NewService(executor input.TaskExecutor, parser output.ResultParser, logger output.LoggerPort) *Service {
	return &Service{
		executor: executor,
		parser:   parser,
		logger:   logger,
	}
}

func (s *Service) Research(ctx context.Context, query string) (*input.ResearchReport, error) {
	query = strings.TrimSpace(query)
	log := s.logger.WithField("query", query)

	log.Info("Research started")

	res, err := s.executor.Execute(ctx, input.ExecuteRequest{Query: query})
	if err != nil {
		log.Error("Research loop failed", "error", err)
		return nil, fmt.Errorf("research %q: %w", query, err)
	}

	report := &input.ResearchReport{
		Query:      query,
		Raw:        res.Output,
		Steps:      res.Steps,
		Iterations: res.Iterations,
	}

	result, err := s.parser.Parse(res.Output)
	if err != nil {
		log.Warn("Response did not match schema", "error", err, "raw_len", len(res.Output))
		report.ParseErr = err
		return report, nil
	}
	report.Result = result

	log.Info("Research finished",
		"iterations", res.Iterations,
		"steps", len(res.Steps),
		"tools_used", strings.Join(res.Steps.ToolsUsed(), ","),
	)
	return report, nil
}
