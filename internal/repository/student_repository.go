package repository

import (
	"context"

	"github.com/examsched/examsched-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, full_name, reg_number, class_id, created_at, updated_at
		 FROM students WHERE id = $1`, id,
	).Scan(&s.ID, &s.FullName, &s.RegNumber, &s.ClassID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByRegNumber retrieves a student by registration number.
func (r *StudentRepository) GetByRegNumber(ctx context.Context, regNumber string) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, full_name, reg_number, class_id, created_at, updated_at
		 FROM students WHERE reg_number = $1`, regNumber,
	).Scan(&s.ID, &s.FullName, &s.RegNumber, &s.ClassID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List retrieves students with an optional class filter, paginated.
func (r *StudentRepository) List(ctx context.Context, classID *int, limit, offset int) ([]model.Student, int, error) {
	countQuery := `SELECT COUNT(*) FROM students`
	listQuery := `SELECT id, full_name, reg_number, class_id, created_at, updated_at FROM students`
	var args []interface{}

	if classID != nil {
		countQuery += ` WHERE class_id = $1`
		listQuery += ` WHERE class_id = $1 ORDER BY full_name LIMIT $2 OFFSET $3`
		args = append(args, *classID)
	} else {
		listQuery += ` ORDER BY full_name LIMIT $1 OFFSET $2`
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.FullName, &s.RegNumber, &s.ClassID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		students = append(students, s)
	}
	return students, total, rows.Err()
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO students (full_name, reg_number, class_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		s.FullName, s.RegNumber, s.ClassID,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, s *model.Student) error {
	return r.pool.QueryRow(ctx,
		`UPDATE students
		 SET full_name = $1, reg_number = $2, class_id = $3, updated_at = NOW()
		 WHERE id = $4
		 RETURNING updated_at`,
		s.FullName, s.RegNumber, s.ClassID, s.ID,
	).Scan(&s.UpdatedAt)
}

// Delete removes a student. Attempt rows cascade along with their answers and
// reports.
func (r *StudentRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	return err
}

// CountOpenAttempts returns how many unfinished attempts a student has.
func (r *StudentRepository) CountOpenAttempts(ctx context.Context, studentID int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM scheduled_attempts WHERE student_id = $1 AND end_time IS NULL`,
		studentID,
	).Scan(&n)
	return n, err
}
