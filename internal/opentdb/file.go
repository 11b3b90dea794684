package opentdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/vytor/triviaflash/internal/logger"
	"github.com/vytor/triviaflash/internal/quiz"
)

// FileProvider serves questions from a JSON file instead of the network.
// The file holds either a full API response or a bare array of results.
// It is re-read on every fetch.
type FileProvider struct {
	path string
}

var _ quiz.Provider = (*FileProvider)(nil)

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// NewProvider returns a FileProvider when file is set and an HTTP client
// built from opts otherwise.
func NewProvider(file string, opts Options) quiz.Provider {
	if file != "" {
		return NewFileProvider(file)
	}
	return New(opts)
}

func (p *FileProvider) FetchQuestions(ctx context.Context) ([]quiz.Question, error) {
	log := logger.FromContext(ctx).WithPrefix("opentdb").WithField("file", p.path)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", quiz.ErrProviderUnavailable, err)
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		log.Error("failed to read questions file: %v", err)
		return nil, fmt.Errorf("%w: %w", quiz.ErrProviderUnavailable, err)
	}

	questions, err := parseDocument(data)
	if err != nil {
		log.Error("failed to parse questions file: %v", err)
		return nil, err
	}

	log.Info("loaded %d questions", len(questions))
	return questions, nil
}

func parseDocument(data []byte) ([]quiz.Question, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var results []rawResult
		if err := json.Unmarshal(trimmed, &results); err != nil {
			return nil, fmt.Errorf("%w: parse questions: %w", quiz.ErrProviderUnavailable, err)
		}
		return apiResponse{Results: results}.questions()
	}

	var resp apiResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, fmt.Errorf("%w: parse questions: %w", quiz.ErrProviderUnavailable, err)
	}
	return resp.questions()
}
