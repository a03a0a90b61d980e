package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/osei222/schoolfees/core/comms"
)

type smsTemplateRow struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r smsTemplateRow) template() comms.Template {
	return comms.Template(r)
}

type smsMessageRow struct {
	ID               int       `db:"id"`
	Recipient        string    `db:"recipient"`
	Body             string    `db:"body"`
	Status           string    `db:"status"`
	UnitsUsed        int       `db:"units_used"`
	ProviderResponse string    `db:"provider_response"`
	ErrorMessage     string    `db:"error_message"`
	CreatedAt        time.Time `db:"created_at"`
}

func (r smsMessageRow) message() comms.Message {
	return comms.Message{
		ID:               r.ID,
		Recipient:        r.Recipient,
		Body:             r.Body,
		Status:           comms.Status(r.Status),
		UnitsUsed:        r.UnitsUsed,
		ProviderResponse: r.ProviderResponse,
		ErrorMessage:     r.ErrorMessage,
		CreatedAt:        r.CreatedAt,
	}
}

type commsRepository struct {
	db *sqlx.DB
}

var _ comms.Repository = (*commsRepository)(nil) // interface compliance check

func NewCommsRepository(db *sqlx.DB) *commsRepository {
	return &commsRepository{db: db}
}

func (repo commsRepository) CreateTemplate(ctx context.Context, t comms.Template) (comms.Template, error) {
	query := `
		INSERT INTO sms_template (name, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, query, t.Name, t.Body, t.CreatedAt.UTC(), t.UpdatedAt.UTC()).Scan(&t.ID)
	if err != nil {
		return comms.Template{}, errors.Wrap(err, "inserting sms template")
	}
	return t, nil
}

func (repo commsRepository) GetTemplateByName(ctx context.Context, name string) (comms.Template, error) {
	var row smsTemplateRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM sms_template WHERE name = $1`, name); err != nil {
		return comms.Template{}, trapNoRowsErr(err, comms.ErrNotFound, "finding sms template")
	}
	return row.template(), nil
}

func (repo commsRepository) QueryAllTemplates(ctx context.Context) ([]comms.Template, error) {
	var rows []smsTemplateRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM sms_template ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying sms templates")
	}
	templates := make([]comms.Template, 0, len(rows))
	for _, row := range rows {
		templates = append(templates, row.template())
	}
	return templates, nil
}

func (repo commsRepository) UpdateTemplate(ctx context.Context, t comms.Template) (comms.Template, error) {
	query := `
		UPDATE sms_template SET name = $1, body = $2, updated_at = $3 WHERE id = $4
		RETURNING *`
	var row smsTemplateRow
	if err := repo.db.GetContext(ctx, &row, query, t.Name, t.Body, t.UpdatedAt.UTC(), t.ID); err != nil {
		return comms.Template{}, trapNoRowsErr(err, comms.ErrNotFound, "updating sms template")
	}
	return row.template(), nil
}

func (repo commsRepository) DeleteTemplate(ctx context.Context, id int) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM sms_template WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting sms template")
	}
	return nil
}

func (repo commsRepository) CreateMessage(ctx context.Context, m comms.Message) (comms.Message, error) {
	query := `
		INSERT INTO sms_message (recipient, body, status, units_used, provider_response, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := repo.db.QueryRowContext(
		ctx, query,
		m.Recipient, m.Body, string(m.Status), m.UnitsUsed, m.ProviderResponse, m.ErrorMessage, m.CreatedAt.UTC(),
	).Scan(&m.ID)
	if err != nil {
		return comms.Message{}, errors.Wrap(err, "inserting sms message")
	}
	return m, nil
}

func (repo commsRepository) FilterMessages(ctx context.Context, limit int) ([]comms.Message, error) {
	query := `SELECT * FROM sms_message ORDER BY created_at DESC, id DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	var rows []smsMessageRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying sms messages")
	}
	messages := make([]comms.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, row.message())
	}
	return messages, nil
}
