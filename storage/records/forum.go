package records

import (
	"context"

	"github.com/trezcool/aula/core/forum"
)

// threads maps a subject to its messages in insertion order.
type threads map[string][]forum.Message

type forumRepository struct {
	db *DB
}

var _ forum.Repository = (*forumRepository)(nil)

func NewForumRepository(db *DB) forum.Repository {
	return &forumRepository{db: db}
}

func (repo *forumRepository) GetThread(ctx context.Context, subject string) ([]forum.Message, error) {
	all, err := read[threads](ctx, repo.db, forumKey)
	if err != nil {
		return nil, err
	}
	msgs := all[subject]
	if msgs == nil {
		msgs = []forum.Message{}
	}
	return msgs, nil
}

func (repo *forumRepository) AppendMessage(ctx context.Context, subject string, msg forum.Message) error {
	_, err := update(ctx, repo.db, forumKey, func(all threads) (threads, error) {
		if all == nil {
			all = make(threads)
		}
		all[subject] = append(all[subject], msg)
		return all, nil
	})
	return err
}
