package inmemdb

import (
	"context"
	"sort"

	"github.com/osei222/schoolfees/core/comms"
)

var templatePKCount int

type commsRepository struct {
	db *commsTable
}

func NewCommsRepository(db *DB) comms.Repository {
	return &commsRepository{db: db.comms}
}

func (repo *commsRepository) CreateTemplate(ctx context.Context, t comms.Template) (comms.Template, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	templatePKCount++
	t.ID = templatePKCount
	repo.db.templates[t.ID] = &t
	return t, nil
}

func (repo *commsRepository) GetTemplateByName(ctx context.Context, name string) (comms.Template, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, t := range repo.db.templates {
		if t.Name == name {
			return *t, nil
		}
	}
	return comms.Template{}, comms.ErrNotFound
}

func (repo *commsRepository) QueryAllTemplates(ctx context.Context) ([]comms.Template, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	templates := make([]comms.Template, 0, len(repo.db.templates))
	for _, t := range repo.db.templates {
		templates = append(templates, *t)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })
	return templates, nil
}

func (repo *commsRepository) UpdateTemplate(ctx context.Context, t comms.Template) (comms.Template, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.templates[t.ID]
	if !ok {
		return comms.Template{}, comms.ErrNotFound
	}
	t.CreatedAt = orig.CreatedAt
	repo.db.templates[t.ID] = &t
	return t, nil
}

func (repo *commsRepository) DeleteTemplate(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.templates, id)
	return nil
}

func (repo *commsRepository) CreateMessage(ctx context.Context, m comms.Message) (comms.Message, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	m.ID = len(repo.db.messages) + 1
	repo.db.messages = append(repo.db.messages, m)
	return m, nil
}

func (repo *commsRepository) FilterMessages(ctx context.Context, limit int) ([]comms.Message, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	// newest first
	messages := make([]comms.Message, 0, len(repo.db.messages))
	for i := len(repo.db.messages) - 1; i >= 0; i-- {
		messages = append(messages, repo.db.messages[i])
		if limit > 0 && len(messages) == limit {
			break
		}
	}
	return messages, nil
}
