package v1_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/boardpulse/boardpulse/internal/domain"
	"github.com/boardpulse/boardpulse/internal/notify"
	"github.com/boardpulse/boardpulse/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers — inject the authenticated user for DoCtx
// ---------------------------------------------------------------------------

func userCtx(userID uuid.UUID) context.Context {
	return context.WithValue(context.Background(), middleware.ContextKeyUserID, userID)
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	users      domain.UserRepository
	boards     domain.BoardRepository
	lists      domain.ListRepository
	tasks      domain.TaskRepository
	messages   domain.MessageRepository
	activities domain.ActivityRepository
}

func (m *mockDataStore) Users() domain.UserRepository          { return m.users }
func (m *mockDataStore) Boards() domain.BoardRepository        { return m.boards }
func (m *mockDataStore) Lists() domain.ListRepository          { return m.lists }
func (m *mockDataStore) Tasks() domain.TaskRepository          { return m.tasks }
func (m *mockDataStore) Messages() domain.MessageRepository    { return m.messages }
func (m *mockDataStore) Activities() domain.ActivityRepository { return m.activities }

// ---------------------------------------------------------------------------
// Mock UserRepository
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	createFunc     func(ctx context.Context, u *domain.User) error
	getByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	updateFunc     func(ctx context.Context, u *domain.User) error
	listFunc       func(ctx context.Context) ([]*domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.createFunc(ctx, u)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.getByEmailFunc(ctx, email)
}

func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error {
	return m.updateFunc(ctx, u)
}

func (m *mockUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	return m.listFunc(ctx)
}

// ---------------------------------------------------------------------------
// Mock BoardRepository
// ---------------------------------------------------------------------------

type mockBoardRepo struct {
	createFunc     func(ctx context.Context, b *domain.Board) error
	getByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.Board, error)
	listByUserFunc func(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error)
	updateFunc     func(ctx context.Context, b *domain.Board) error
	deleteFunc     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockBoardRepo) Create(ctx context.Context, b *domain.Board) error {
	return m.createFunc(ctx, b)
}

func (m *mockBoardRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockBoardRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	return m.listByUserFunc(ctx, userID)
}

func (m *mockBoardRepo) Update(ctx context.Context, b *domain.Board) error {
	return m.updateFunc(ctx, b)
}

func (m *mockBoardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock ListRepository
// ---------------------------------------------------------------------------

type mockListRepo struct {
	createFunc      func(ctx context.Context, l *domain.List) error
	getByIDFunc     func(ctx context.Context, id uuid.UUID) (*domain.List, error)
	listByBoardFunc func(ctx context.Context, boardID uuid.UUID) ([]*domain.List, error)
	updateFunc      func(ctx context.Context, l *domain.List) error
	deleteFunc      func(ctx context.Context, id uuid.UUID) error
}

func (m *mockListRepo) Create(ctx context.Context, l *domain.List) error {
	return m.createFunc(ctx, l)
}

func (m *mockListRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.List, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockListRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.List, error) {
	return m.listByBoardFunc(ctx, boardID)
}

func (m *mockListRepo) Update(ctx context.Context, l *domain.List) error {
	return m.updateFunc(ctx, l)
}

func (m *mockListRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock TaskRepository
// ---------------------------------------------------------------------------

type mockTaskRepo struct {
	createFunc        func(ctx context.Context, t *domain.Task) error
	getByIDFunc       func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	listByBoardFunc   func(ctx context.Context, boardID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, int, error)
	listByListFunc    func(ctx context.Context, listID uuid.UUID) ([]*domain.Task, error)
	updateFunc        func(ctx context.Context, t *domain.Task) error
	deleteFunc        func(ctx context.Context, id uuid.UUID) error
	addCommentFunc    func(ctx context.Context, taskID uuid.UUID, c *domain.Comment) error
	deleteCommentFunc func(ctx context.Context, taskID, commentID uuid.UUID) error
}

func (m *mockTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	return m.createFunc(ctx, t)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockTaskRepo) ListByBoard(ctx context.Context, boardID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, int, error) {
	return m.listByBoardFunc(ctx, boardID, filter)
}

func (m *mockTaskRepo) ListByList(ctx context.Context, listID uuid.UUID) ([]*domain.Task, error) {
	return m.listByListFunc(ctx, listID)
}

func (m *mockTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	return m.updateFunc(ctx, t)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockTaskRepo) AddComment(ctx context.Context, taskID uuid.UUID, c *domain.Comment) error {
	return m.addCommentFunc(ctx, taskID, c)
}

func (m *mockTaskRepo) DeleteComment(ctx context.Context, taskID, commentID uuid.UUID) error {
	return m.deleteCommentFunc(ctx, taskID, commentID)
}

// ---------------------------------------------------------------------------
// Mock MessageRepository
// ---------------------------------------------------------------------------

type mockMessageRepo struct {
	createFunc      func(ctx context.Context, msg *domain.Message) error
	listByBoardFunc func(ctx context.Context, boardID uuid.UUID, page, limit int) ([]*domain.Message, int, error)
}

func (m *mockMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	return m.createFunc(ctx, msg)
}

func (m *mockMessageRepo) ListByBoard(ctx context.Context, boardID uuid.UUID, page, limit int) ([]*domain.Message, int, error) {
	return m.listByBoardFunc(ctx, boardID, page, limit)
}

// ---------------------------------------------------------------------------
// Mock ActivityRepository
// ---------------------------------------------------------------------------

type mockActivityRepo struct {
	createFunc      func(ctx context.Context, a *domain.Activity) error
	listByBoardFunc func(ctx context.Context, boardID uuid.UUID, limit int) ([]*domain.Activity, error)
	listByTaskFunc  func(ctx context.Context, taskID uuid.UUID) ([]*domain.Activity, error)
}

func (m *mockActivityRepo) Create(ctx context.Context, a *domain.Activity) error {
	if m.createFunc == nil {
		return nil
	}
	return m.createFunc(ctx, a)
}

func (m *mockActivityRepo) ListByBoard(ctx context.Context, boardID uuid.UUID, limit int) ([]*domain.Activity, error) {
	return m.listByBoardFunc(ctx, boardID, limit)
}

func (m *mockActivityRepo) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Activity, error) {
	return m.listByTaskFunc(ctx, taskID)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc     func(ctx context.Context, email, password, name string) (*domain.User, error)
	loginFunc        func(ctx context.Context, email, password string) (string, string, error)
	refreshTokenFunc func(ctx context.Context, refreshToken string) (string, error)
	getUserFunc      func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	return m.registerFunc(ctx, email, password, name)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshTokenFunc(ctx, refreshToken)
}

func (m *mockAuthService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return m.getUserFunc(ctx, userID)
}

// ---------------------------------------------------------------------------
// Mock notify.Publisher
// ---------------------------------------------------------------------------

type sentNotification struct {
	UserID       uuid.UUID
	Notification notify.Notification
}

type mockNotifier struct {
	sent []sentNotification
	err  error
}

func (m *mockNotifier) Notify(_ context.Context, userID uuid.UUID, n notify.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentNotification{UserID: userID, Notification: n})
	return nil
}
