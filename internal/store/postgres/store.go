package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/boardpulse/boardpulse/internal/domain"
)

type Store struct {
	pool       *pgxpool.Pool
	users      *UserRepo
	boards     *BoardRepo
	lists      *ListRepo
	tasks      *TaskRepo
	messages   *MessageRepo
	activities *ActivityRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:       pool,
		users:      NewUserRepo(pool),
		boards:     NewBoardRepo(pool),
		lists:      NewListRepo(pool),
		tasks:      NewTaskRepo(pool),
		messages:   NewMessageRepo(pool),
		activities: NewActivityRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Users() domain.UserRepository          { return s.users }
func (s *Store) Boards() domain.BoardRepository        { return s.boards }
func (s *Store) Lists() domain.ListRepository          { return s.lists }
func (s *Store) Tasks() domain.TaskRepository          { return s.tasks }
func (s *Store) Messages() domain.MessageRepository    { return s.messages }
func (s *Store) Activities() domain.ActivityRepository { return s.activities }
