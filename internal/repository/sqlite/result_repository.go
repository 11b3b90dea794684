package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/triviaflash/internal/logger"
	"github.com/vytor/triviaflash/internal/models"
	"github.com/vytor/triviaflash/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

var resultColumns = []string{
	"id", "session_id", "player_name", "score", "total", "percentage", "source", "finished_at", "created_at",
}

type resultRepository struct {
	db *sql.DB
}

// NewResultRepository creates a new ResultRepository implementation
func NewResultRepository(db *sql.DB) repository.ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) Save(ctx context.Context, result models.QuizResult) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo")
	log.Debug("saving result: session_id=%s, score=%d/%d", result.SessionID, result.Score, result.Total)

	source := result.Source
	if source == "" {
		source = models.SourceWeb
	}

	var id int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		query, args, err := sqlBuilder.Insert("quiz_results").
			Columns("session_id", "player_name", "score", "total", "percentage", "source", "finished_at").
			Values(result.SessionID, result.PlayerName, result.Score, result.Total, result.Percentage, source, result.FinishedAt.UTC()).
			Suffix("ON CONFLICT(session_id) DO NOTHING").
			ToSql()
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			log.Error("failed to insert result: %v", err)
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return repository.ErrResultExists
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}

		if len(result.Answers) == 0 {
			return nil
		}
		insert := sqlBuilder.Insert("quiz_answers").
			Columns("result_id", "position", "question", "selected", "correct", "was_correct")
		for _, a := range result.Answers {
			insert = insert.Values(id, a.Position, a.Question, a.Selected, a.Correct, a.WasCorrect)
		}
		query, args, err = insert.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			log.Error("failed to insert answers: %v", err)
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrResultExists) {
			log.Warn("result already recorded: session_id=%s", result.SessionID)
		}
		return 0, err
	}

	log.Debug("result saved: id=%d, answers=%d", id, len(result.Answers))
	return id, nil
}

func (r *resultRepository) GetBySession(ctx context.Context, sessionID string) (*models.QuizResult, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo")
	log.Debug("getting result: session_id=%s", sessionID)

	query, args, err := sqlBuilder.Select(resultColumns...).
		From("quiz_results").
		Where(squirrel.Eq{"session_id": sessionID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	res, err := scanResult(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("result not found: session_id=%s", sessionID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get result: %v", err)
		return nil, err
	}

	answers, err := r.answers(ctx, res.ID)
	if err != nil {
		log.Error("failed to get answers: %v", err)
		return nil, err
	}
	res.Answers = answers
	return &res, nil
}

func (r *resultRepository) answers(ctx context.Context, resultID int64) ([]models.ResultAnswer, error) {
	query, args, err := sqlBuilder.Select("position", "question", "selected", "correct", "was_correct").
		From("quiz_answers").
		Where(squirrel.Eq{"result_id": resultID}).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []models.ResultAnswer
	for rows.Next() {
		var a models.ResultAnswer
		if err := rows.Scan(&a.Position, &a.Question, &a.Selected, &a.Correct, &a.WasCorrect); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func (r *resultRepository) Top(ctx context.Context, limit int) ([]models.QuizResult, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo")
	log.Debug("listing top results: limit=%d", limit)

	q := sqlBuilder.Select(resultColumns...).
		From("quiz_results").
		OrderBy("percentage DESC", "score DESC", "finished_at ASC", "id ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list results: %v", err)
		return nil, err
	}
	defer rows.Close()

	var results []models.QuizResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			log.Error("failed to scan result row: %v", err)
			return nil, err
		}
		results = append(results, res)
	}

	log.Debug("found %d results", len(results))
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (models.QuizResult, error) {
	var res models.QuizResult
	err := row.Scan(&res.ID, &res.SessionID, &res.PlayerName, &res.Score, &res.Total,
		&res.Percentage, &res.Source, &res.FinishedAt, &res.CreatedAt)
	return res, err
}
