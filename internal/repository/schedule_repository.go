package repository

import (
	"context"
	"time"

	"github.com/examsched/examsched-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScheduleRepository handles exam schedule and question group data access.
type ScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

const scheduleColumns = `s.id, s.subject_id, sub.name, s.class_id, s.exam_date,
	to_char(s.start_time, 'HH24:MI:SS'), s.duration_minutes, s.exam_password`

// GetByID retrieves a schedule with its subject name.
func (r *ScheduleRepository) GetByID(ctx context.Context, id int) (*model.ExamSchedule, error) {
	s := &model.ExamSchedule{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+scheduleColumns+`
		 FROM exam_schedules s
		 JOIN subjects sub ON s.subject_id = sub.id
		 WHERE s.id = $1`, id,
	).Scan(&s.ID, &s.SubjectID, &s.SubjectName, &s.ClassID, &s.ExamDate, &s.StartTime, &s.DurationMinutes, &s.ExamPassword)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// FindForLogin retrieves the schedule matching an exam password, a class,
// and an exam date. Used by the exam login gate.
func (r *ScheduleRepository) FindForLogin(ctx context.Context, examPassword string, classID int, examDate time.Time) (*model.ExamSchedule, error) {
	s := &model.ExamSchedule{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+scheduleColumns+`
		 FROM exam_schedules s
		 JOIN subjects sub ON s.subject_id = sub.id
		 WHERE s.exam_password = $1 AND s.class_id = $2 AND s.exam_date = $3::date`,
		examPassword, classID, examDate.Format("2006-01-02"),
	).Scan(&s.ID, &s.SubjectID, &s.SubjectName, &s.ClassID, &s.ExamDate, &s.StartTime, &s.DurationMinutes, &s.ExamPassword)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List retrieves schedules with optional class and date filters.
func (r *ScheduleRepository) List(ctx context.Context, classID *int, examDate *time.Time) ([]model.ExamSchedule, error) {
	query := `SELECT ` + scheduleColumns + `
		FROM exam_schedules s
		JOIN subjects sub ON s.subject_id = sub.id`
	var args []interface{}

	if classID != nil {
		args = append(args, *classID)
		query += ` WHERE s.class_id = $1`
	}
	if examDate != nil {
		args = append(args, examDate.Format("2006-01-02"))
		if classID != nil {
			query += ` AND s.exam_date = $2::date`
		} else {
			query += ` WHERE s.exam_date = $1::date`
		}
	}
	query += ` ORDER BY s.exam_date, s.start_time`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []model.ExamSchedule
	for rows.Next() {
		var s model.ExamSchedule
		if err := rows.Scan(&s.ID, &s.SubjectID, &s.SubjectName, &s.ClassID, &s.ExamDate, &s.StartTime, &s.DurationMinutes, &s.ExamPassword); err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

// Create inserts a new schedule.
func (r *ScheduleRepository) Create(ctx context.Context, s *model.ExamSchedule) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_schedules (subject_id, class_id, exam_date, start_time, duration_minutes, exam_password)
		 VALUES ($1, $2, $3::date, $4::time, $5, $6)
		 RETURNING id`,
		s.SubjectID, s.ClassID, s.ExamDate.Format("2006-01-02"), s.StartTime, s.DurationMinutes, s.ExamPassword,
	).Scan(&s.ID)
}

// Update modifies an existing schedule.
func (r *ScheduleRepository) Update(ctx context.Context, s *model.ExamSchedule) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_schedules
		 SET subject_id = $1, class_id = $2, exam_date = $3::date, start_time = $4::time,
		     duration_minutes = $5, exam_password = $6
		 WHERE id = $7`,
		s.SubjectID, s.ClassID, s.ExamDate.Format("2006-01-02"), s.StartTime, s.DurationMinutes, s.ExamPassword, s.ID,
	)
	return err
}

// Delete removes a schedule by ID.
func (r *ScheduleRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM exam_schedules WHERE id = $1`, id)
	return err
}

// CountAttempts returns the number of attempts recorded against a schedule.
func (r *ScheduleRepository) CountAttempts(ctx context.Context, scheduleID int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM scheduled_attempts WHERE schedule_id = $1`, scheduleID,
	).Scan(&n)
	return n, err
}

// CountQuestions returns the total question count across all groups of a schedule.
func (r *ScheduleRepository) CountQuestions(ctx context.Context, scheduleID int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM questions q
		 JOIN question_groups g ON q.group_id = g.id
		 WHERE g.schedule_id = $1`, scheduleID,
	).Scan(&n)
	return n, err
}

// CountGroups returns the number of question groups in a schedule.
func (r *ScheduleRepository) CountGroups(ctx context.Context, scheduleID int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM question_groups WHERE schedule_id = $1`, scheduleID,
	).Scan(&n)
	return n, err
}

// PayloadGroups assembles the student-facing question payload for a schedule:
// groups ordered by display_order, questions ordered within each group, and
// options without the correctness flag.
func (r *ScheduleRepository) PayloadGroups(ctx context.Context, scheduleID int) ([]model.GroupForStudent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, instruction_text, COALESCE(group_title, ''), display_order
		 FROM question_groups
		 WHERE schedule_id = $1
		 ORDER BY display_order`, scheduleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []model.GroupForStudent
	groupIndex := make(map[int]int)
	for rows.Next() {
		var g model.GroupForStudent
		if err := rows.Scan(&g.ID, &g.InstructionText, &g.GroupTitle, &g.DisplayOrder); err != nil {
			return nil, err
		}
		g.Questions = []model.QuestionForStudent{}
		groupIndex[g.ID] = len(groups)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	qRows, err := r.pool.Query(ctx,
		`SELECT q.id, q.group_id, q.question_number, q.question_text
		 FROM questions q
		 JOIN question_groups g ON q.group_id = g.id
		 WHERE g.schedule_id = $1
		 ORDER BY g.display_order, q.question_number, q.id`, scheduleID,
	)
	if err != nil {
		return nil, err
	}
	defer qRows.Close()

	questionIndex := make(map[int][2]int) // question ID → (group slot, question slot)
	for qRows.Next() {
		var q model.QuestionForStudent
		if err := qRows.Scan(&q.ID, &q.GroupID, &q.QuestionNumber, &q.QuestionText); err != nil {
			return nil, err
		}
		q.Options = []model.OptionForStudent{}
		gi, ok := groupIndex[q.GroupID]
		if !ok {
			continue
		}
		questionIndex[q.ID] = [2]int{gi, len(groups[gi].Questions)}
		groups[gi].Questions = append(groups[gi].Questions, q)
	}
	if err := qRows.Err(); err != nil {
		return nil, err
	}

	oRows, err := r.pool.Query(ctx,
		`SELECT o.id, o.question_id, o.option_text
		 FROM options o
		 JOIN questions q ON o.question_id = q.id
		 JOIN question_groups g ON q.group_id = g.id
		 WHERE g.schedule_id = $1
		 ORDER BY o.id`, scheduleID,
	)
	if err != nil {
		return nil, err
	}
	defer oRows.Close()

	for oRows.Next() {
		var id, questionID int
		var text string
		if err := oRows.Scan(&id, &questionID, &text); err != nil {
			return nil, err
		}
		slot, ok := questionIndex[questionID]
		if !ok {
			continue
		}
		q := &groups[slot[0]].Questions[slot[1]]
		q.Options = append(q.Options, model.OptionForStudent{ID: id, OptionText: text})
	}
	return groups, oRows.Err()
}

// GetGroup retrieves a question group by ID.
func (r *ScheduleRepository) GetGroup(ctx context.Context, groupID int) (*model.QuestionGroup, error) {
	g := &model.QuestionGroup{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, schedule_id, instruction_text, COALESCE(group_title, ''), display_order
		 FROM question_groups WHERE id = $1`, groupID,
	).Scan(&g.ID, &g.ScheduleID, &g.InstructionText, &g.GroupTitle, &g.DisplayOrder)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ListGroups retrieves all groups of a schedule ordered by display_order.
func (r *ScheduleRepository) ListGroups(ctx context.Context, scheduleID int) ([]model.QuestionGroup, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, schedule_id, instruction_text, COALESCE(group_title, ''), display_order
		 FROM question_groups
		 WHERE schedule_id = $1
		 ORDER BY display_order`, scheduleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []model.QuestionGroup
	for rows.Next() {
		var g model.QuestionGroup
		if err := rows.Scan(&g.ID, &g.ScheduleID, &g.InstructionText, &g.GroupTitle, &g.DisplayOrder); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// CreateGroup inserts a question group. The UNIQUE(schedule_id, display_order)
// constraint rejects duplicate order numbers within a schedule.
func (r *ScheduleRepository) CreateGroup(ctx context.Context, g *model.QuestionGroup) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO question_groups (schedule_id, instruction_text, group_title, display_order)
		 VALUES ($1, $2, NULLIF($3, ''), $4)
		 RETURNING id`,
		g.ScheduleID, g.InstructionText, g.GroupTitle, g.DisplayOrder,
	).Scan(&g.ID)
}

// UpdateGroup modifies a group's instructions, title, and display order.
func (r *ScheduleRepository) UpdateGroup(ctx context.Context, g *model.QuestionGroup) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE question_groups
		 SET instruction_text = $1, group_title = NULLIF($2, ''), display_order = $3
		 WHERE id = $4`,
		g.InstructionText, g.GroupTitle, g.DisplayOrder, g.ID,
	)
	return err
}

// DeleteGroup removes a group; its questions and options cascade.
func (r *ScheduleRepository) DeleteGroup(ctx context.Context, groupID int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM question_groups WHERE id = $1`, groupID)
	return err
}
