package repository

import (
	"context"

	"github.com/examsched/examsched-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionRepository handles question and option authoring.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// GetByID retrieves a question with its options.
func (r *QuestionRepository) GetByID(ctx context.Context, id int) (*model.QuestionWithOptions, error) {
	q := &model.QuestionWithOptions{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, group_id, question_text, question_number, COALESCE(correct_option_id, 0)
		 FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.GroupID, &q.QuestionText, &q.QuestionNumber, &q.CorrectOptionID)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, question_id, option_text FROM options WHERE question_id = $1 ORDER BY id`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var o model.Option
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.OptionText); err != nil {
			return nil, err
		}
		q.Options = append(q.Options, o)
	}
	return q, rows.Err()
}

// ListByGroup retrieves all questions of a group, with options, ordered by
// question number.
func (r *QuestionRepository) ListByGroup(ctx context.Context, groupID int) ([]model.QuestionWithOptions, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, group_id, question_text, question_number, COALESCE(correct_option_id, 0)
		 FROM questions
		 WHERE group_id = $1
		 ORDER BY question_number, id`, groupID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.QuestionWithOptions
	index := make(map[int]int)
	for rows.Next() {
		var q model.QuestionWithOptions
		if err := rows.Scan(&q.ID, &q.GroupID, &q.QuestionText, &q.QuestionNumber, &q.CorrectOptionID); err != nil {
			return nil, err
		}
		q.Options = []model.Option{}
		index[q.ID] = len(questions)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	oRows, err := r.pool.Query(ctx,
		`SELECT o.id, o.question_id, o.option_text
		 FROM options o
		 JOIN questions q ON o.question_id = q.id
		 WHERE q.group_id = $1
		 ORDER BY o.id`, groupID,
	)
	if err != nil {
		return nil, err
	}
	defer oRows.Close()

	for oRows.Next() {
		var o model.Option
		if err := oRows.Scan(&o.ID, &o.QuestionID, &o.OptionText); err != nil {
			return nil, err
		}
		if i, ok := index[o.QuestionID]; ok {
			questions[i].Options = append(questions[i].Options, o)
		}
	}
	return questions, oRows.Err()
}

// Create inserts a question and its options in one transaction. Options are
// inserted first without a correct flag, then the question's
// correct_option_id is pointed at the generated ID of the flagged option.
func (r *QuestionRepository) Create(ctx context.Context, q *model.QuestionWithOptions, correctIndex int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO questions (group_id, question_text, question_number)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		q.GroupID, q.QuestionText, q.QuestionNumber,
	).Scan(&q.ID)
	if err != nil {
		return err
	}

	for i := range q.Options {
		q.Options[i].QuestionID = q.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO options (question_id, option_text) VALUES ($1, $2) RETURNING id`,
			q.ID, q.Options[i].OptionText,
		).Scan(&q.Options[i].ID)
		if err != nil {
			return err
		}
	}

	q.CorrectOptionID = q.Options[correctIndex].ID
	_, err = tx.Exec(ctx,
		`UPDATE questions SET correct_option_id = $1 WHERE id = $2`, q.CorrectOptionID, q.ID,
	)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Replace rewrites a question's text, number, and full option set in one
// transaction. Existing options are discarded and recreated.
func (r *QuestionRepository) Replace(ctx context.Context, q *model.QuestionWithOptions, correctIndex int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Detach the correct option pointer before deleting the old options.
	_, err = tx.Exec(ctx, `UPDATE questions SET correct_option_id = NULL WHERE id = $1`, q.ID)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM options WHERE question_id = $1`, q.ID)
	if err != nil {
		return err
	}

	for i := range q.Options {
		q.Options[i].QuestionID = q.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO options (question_id, option_text) VALUES ($1, $2) RETURNING id`,
			q.ID, q.Options[i].OptionText,
		).Scan(&q.Options[i].ID)
		if err != nil {
			return err
		}
	}

	q.CorrectOptionID = q.Options[correctIndex].ID
	_, err = tx.Exec(ctx,
		`UPDATE questions
		 SET question_text = $1, question_number = $2, correct_option_id = $3
		 WHERE id = $4`,
		q.QuestionText, q.QuestionNumber, q.CorrectOptionID, q.ID,
	)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Delete removes a question and its options.
func (r *QuestionRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `UPDATE questions SET correct_option_id = NULL WHERE id = $1`, id)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CountAnswers returns how many submitted answers reference a question.
func (r *QuestionRepository) CountAnswers(ctx context.Context, questionID int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_answers WHERE question_id = $1`, questionID,
	).Scan(&n)
	return n, err
}

// CountAnswersByGroup returns how many submitted answers reference any
// question in a group.
func (r *QuestionRepository) CountAnswersByGroup(ctx context.Context, groupID int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM user_answers ua
		 JOIN questions q ON ua.question_id = q.id
		 WHERE q.group_id = $1`, groupID,
	).Scan(&n)
	return n, err
}
