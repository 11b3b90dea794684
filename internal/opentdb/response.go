package opentdb

import (
	"errors"
	"fmt"

	"github.com/vytor/triviaflash/internal/quiz"
)

// Response codes documented at https://opentdb.com/api_config.php.
const (
	CodeSuccess          = 0
	CodeNoResults        = 1
	CodeInvalidParameter = 2
	CodeTokenNotFound    = 3
	CodeTokenEmpty       = 4
	CodeRateLimit        = 5
)

// ErrRateLimited is returned when the API refuses a request for arriving too soon.
var ErrRateLimited = errors.New("opentdb rate limit exceeded")

// APIError is a non-success response_code from the API.
type APIError struct {
	Code int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("opentdb response_code %d: %s", e.Code, codeDescription(e.Code))
}

// Unwrap lets callers use errors.Is with the quiz sentinels. "No results"
// means the batch is empty; everything else means the provider failed.
func (e *APIError) Unwrap() []error {
	switch e.Code {
	case CodeNoResults:
		return []error{quiz.ErrEmptyQuestionSet}
	case CodeRateLimit:
		return []error{quiz.ErrProviderUnavailable, ErrRateLimited}
	default:
		return []error{quiz.ErrProviderUnavailable}
	}
}

func codeDescription(code int) string {
	switch code {
	case CodeSuccess:
		return "success"
	case CodeNoResults:
		return "not enough questions for the query"
	case CodeInvalidParameter:
		return "invalid parameter"
	case CodeTokenNotFound:
		return "session token not found"
	case CodeTokenEmpty:
		return "session token exhausted"
	case CodeRateLimit:
		return "rate limit exceeded"
	default:
		return "unknown response code"
	}
}

type apiResponse struct {
	ResponseCode int         `json:"response_code"`
	Results      []rawResult `json:"results"`
}

type rawResult struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// questions checks the response code and converts results. Text stays
// entity-escaped; the session decodes it for display.
func (r apiResponse) questions() ([]quiz.Question, error) {
	if r.ResponseCode != CodeSuccess {
		return nil, &APIError{Code: r.ResponseCode}
	}
	out := make([]quiz.Question, 0, len(r.Results))
	for i, res := range r.Results {
		if res.Question == "" || res.CorrectAnswer == "" {
			return nil, fmt.Errorf("%w: result %d is missing its question or correct answer", quiz.ErrProviderUnavailable, i)
		}
		out = append(out, quiz.Question{
			Category:         res.Category,
			Difficulty:       res.Difficulty,
			Type:             res.Type,
			Prompt:           res.Question,
			CorrectAnswer:    res.CorrectAnswer,
			IncorrectAnswers: append([]string(nil), res.IncorrectAnswers...),
		})
	}
	return out, nil
}
