package database

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/osei222/schoolfees/core/student"
)

type studentRow struct {
	ID            int            `db:"id"`
	Name          string         `db:"name"`
	Class         string         `db:"class"`
	Gender        sql.NullString `db:"gender"`
	DateOfBirth   sql.NullTime   `db:"date_of_birth"`
	ParentName    sql.NullString `db:"parent_name"`
	ParentContact sql.NullString `db:"parent_contact"`
	ParentEmail   sql.NullString `db:"parent_email"`
	AcademicYear  string         `db:"academic_year"`
	Term          string         `db:"term"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r studentRow) student() student.Student {
	s := student.Student{
		ID:            r.ID,
		Name:          r.Name,
		Class:         r.Class,
		Gender:        r.Gender.String,
		ParentName:    r.ParentName.String,
		ParentContact: r.ParentContact.String,
		ParentEmail:   r.ParentEmail.String,
		AcademicYear:  r.AcademicYear,
		Term:          r.Term,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.DateOfBirth.Valid {
		dob := r.DateOfBirth.Time
		s.DateOfBirth = &dob
	}
	return s
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	query := `
		INSERT INTO student (name, class, gender, date_of_birth, parent_name, parent_contact, parent_email,
		                     academic_year, term, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10, $11)
		RETURNING id`
	err := repo.db.QueryRowContext(
		ctx, query,
		s.Name, s.Class, s.Gender, s.DateOfBirth, s.ParentName, s.ParentContact, s.ParentEmail,
		s.AcademicYear, s.Term, s.CreatedAt.UTC(), s.UpdatedAt.UTC(),
	).Scan(&s.ID)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return s, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM student WHERE id = $1`, id); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "finding student by ID")
	}
	return row.student(), nil
}

func (repo studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	query := `SELECT * FROM student`
	var conds []string
	var args []interface{}
	arg := func(val interface{}) string {
		args = append(args, val)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		conds = append(conds, `(name ILIKE `+arg(val)+` OR parent_name ILIKE `+arg(val)+`)`)
	}
	if filter.Class != "" {
		conds = append(conds, `class = `+arg(filter.Class))
	}
	if filter.AcademicYear != "" {
		conds = append(conds, `academic_year = `+arg(filter.AcademicYear))
	}
	if filter.Term != "" {
		conds = append(conds, `term = `+arg(filter.Term))
	}

	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY class, name`

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.student())
	}
	return students, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	query := `
		UPDATE student
		SET name = $1, class = $2, gender = NULLIF($3, ''), date_of_birth = $4, parent_name = NULLIF($5, ''),
		    parent_contact = NULLIF($6, ''), parent_email = NULLIF($7, ''), academic_year = $8, term = $9,
		    updated_at = $10
		WHERE id = $11
		RETURNING *`
	var row studentRow
	err := repo.db.GetContext(
		ctx, &row, query,
		s.Name, s.Class, s.Gender, s.DateOfBirth, s.ParentName, s.ParentContact, s.ParentEmail,
		s.AcademicYear, s.Term, s.UpdatedAt.UTC(), s.ID,
	)
	if err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "updating student")
	}
	return row.student(), nil
}

func (repo studentRepository) DeleteStudentsByID(ctx context.Context, ids ...int) error {
	query, args, err := sqlx.In(`DELETE FROM student WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting students")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return nil
}
