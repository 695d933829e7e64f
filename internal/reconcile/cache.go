// Package reconcile maintains a client-local board tree merged from two
// independent write paths: REST responses applied optimistically, and events
// relayed over the socket. Both paths funnel into the same idempotent merge
// operations, so a REST response racing its own socket echo converges to a
// single copy of every entity.
package reconcile

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/boardpulse/boardpulse/internal/domain"
	"github.com/boardpulse/boardpulse/internal/realtime"
)

// ListTree is one list and the tasks currently placed in it.
type ListTree struct {
	List  domain.List
	Tasks []domain.Task
}

// Tree is a point-in-time copy of the cached board.
type Tree struct {
	Board domain.Board
	Lists []ListTree
}

// Cache is the single rendering source of truth for one board. Updates are
// last-writer-wins wholesale replacements; there is no field-level merging
// and no version comparison. That is a known limitation, kept deliberately:
// adding conflict detection would change observable behavior.
//
// Every merge operation is a no-op on a missing target. Out-of-order delivery
// between the local and remote paths is expected, never an error.
type Cache struct {
	mu    sync.Mutex
	board domain.Board
	lists []*ListTree
}

func NewCache() *Cache {
	return &Cache{}
}

// Load primes the cache from an initial REST fetch, grouping tasks into
// their lists. It replaces whatever the cache held before.
func (c *Cache) Load(board domain.Board, lists []domain.List, tasks []domain.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.board = board
	c.lists = c.lists[:0]
	for _, l := range lists {
		c.lists = append(c.lists, &ListTree{List: l})
	}
	for _, t := range tasks {
		if node := c.findList(t.ListID); node != nil {
			node.Tasks = append(node.Tasks, t)
		}
	}
	c.sortLists()
}

// ApplyBoardUpdated replaces the board metadata wholesale.
func (c *Cache) ApplyBoardUpdated(board domain.Board) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.board = board
}

// ApplyListCreated appends the list unless a list with the same id is
// already present. Creation is idempotent by id: the optimistic REST insert
// and a relayed echo of the same create collapse to one copy.
func (c *Cache) ApplyListCreated(list domain.List) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.findList(list.ID) != nil {
		return
	}
	c.lists = append(c.lists, &ListTree{List: list})
	c.sortLists()
}

// ApplyListUpdated replaces the list wholesale, keeping its task collection.
// An unknown id is a no-op.
func (c *Cache) ApplyListUpdated(list domain.List) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := c.findList(list.ID)
	if node == nil {
		return
	}
	node.List = list
	c.sortLists()
}

// ApplyListDeleted removes the list and everything in it. An absent id is a
// no-op.
func (c *Cache) ApplyListDeleted(listID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, node := range c.lists {
		if node.List.ID == listID {
			c.lists = append(c.lists[:i], c.lists[i+1:]...)
			return
		}
	}
}

// ApplyTaskCreated appends the task to its list unless that list already
// holds a task with the same id.
func (c *Cache) ApplyTaskCreated(task domain.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := c.findList(task.ListID)
	if node == nil {
		return
	}
	for _, existing := range node.Tasks {
		if existing.ID == task.ID {
			return
		}
	}
	node.Tasks = append(node.Tasks, task)
}

// ApplyTaskUpdated replaces the task wholesale wherever it lives. The
// incoming task's ListID is authoritative: if the task sits in a list whose
// id no longer matches, it is removed from there and placed in the
// destination, so a task occupies exactly one list afterward. A task present
// nowhere is a no-op, not an implicit create.
func (c *Cache) ApplyTaskUpdated(task domain.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existed := false
	replaced := false
	for _, node := range c.lists {
		for i, existing := range node.Tasks {
			if existing.ID != task.ID {
				continue
			}
			existed = true
			if node.List.ID == task.ListID {
				node.Tasks[i] = task
				replaced = true
			} else {
				node.Tasks = append(node.Tasks[:i], node.Tasks[i+1:]...)
			}
			break
		}
	}
	if !existed || replaced {
		return
	}
	if dest := c.findList(task.ListID); dest != nil {
		dest.Tasks = append(dest.Tasks, task)
	}
}

// ApplyTaskDeleted removes the task from wherever it currently resides.
func (c *Cache) ApplyTaskDeleted(taskID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, node := range c.lists {
		for i, existing := range node.Tasks {
			if existing.ID == taskID {
				node.Tasks = append(node.Tasks[:i], node.Tasks[i+1:]...)
				return
			}
		}
	}
}

// ApplyTaskMoved repositions a task by id: removed from whichever list holds
// it, inserted into the destination at the given index (clamped). If the
// destination list or the task is unknown the move is dropped without
// touching the tree.
func (c *Cache) ApplyTaskMoved(taskID, destListID uuid.UUID, destIndex int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dest := c.findList(destListID)
	if dest == nil {
		return
	}

	var task *domain.Task
	for _, node := range c.lists {
		for i, existing := range node.Tasks {
			if existing.ID == taskID {
				moved := existing
				moved.ListID = destListID
				task = &moved
				node.Tasks = append(node.Tasks[:i], node.Tasks[i+1:]...)
				break
			}
		}
		if task != nil {
			break
		}
	}
	if task == nil {
		return
	}

	if destIndex < 0 {
		destIndex = 0
	}
	if destIndex > len(dest.Tasks) {
		destIndex = len(dest.Tasks)
	}
	dest.Tasks = append(dest.Tasks, domain.Task{})
	copy(dest.Tasks[destIndex+1:], dest.Tasks[destIndex:])
	dest.Tasks[destIndex] = *task
}

// Snapshot returns a copy of the tree safe to read while the cache keeps
// absorbing events.
func (c *Cache) Snapshot() Tree {
	c.mu.Lock()
	defer c.mu.Unlock()

	tree := Tree{Board: c.board, Lists: make([]ListTree, len(c.lists))}
	for i, node := range c.lists {
		tree.Lists[i] = ListTree{
			List:  node.List,
			Tasks: append([]domain.Task(nil), node.Tasks...),
		}
	}
	return tree
}

// TaskCount reports how many tasks the whole tree holds.
func (c *Cache) TaskCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, node := range c.lists {
		n += len(node.Tasks)
	}
	return n
}

func (c *Cache) findList(id uuid.UUID) *ListTree {
	for _, node := range c.lists {
		if node.List.ID == id {
			return node
		}
	}
	return nil
}

func (c *Cache) sortLists() {
	sort.SliceStable(c.lists, func(i, j int) bool {
		return c.lists[i].List.Order < c.lists[j].List.Order
	})
}

type movedEvent struct {
	TaskID            uuid.UUID `json:"taskId"`
	DestinationListID uuid.UUID `json:"destinationListId"`
	DestinationIndex  int       `json:"destinationIndex"`
}

type deletedEvent struct {
	TaskID uuid.UUID `json:"taskId"`
	ListID uuid.UUID `json:"listId"`
}

// ApplyEvent routes one relayed socket event into the matching merge
// operation. Events the cache does not model, and payloads that fail to
// decode, are dropped: reconciliation never raises past this boundary.
func (c *Cache) ApplyEvent(event string, data json.RawMessage) {
	switch event {
	case realtime.EventTaskCreated:
		var task domain.Task
		if decode(event, data, &task) {
			c.ApplyTaskCreated(task)
		}
	case realtime.EventTaskUpdated:
		var task domain.Task
		if decode(event, data, &task) {
			c.ApplyTaskUpdated(task)
		}
	case realtime.EventTaskMoved:
		var mv movedEvent
		if decode(event, data, &mv) {
			c.ApplyTaskMoved(mv.TaskID, mv.DestinationListID, mv.DestinationIndex)
		}
	case realtime.EventTaskDeleted:
		var del deletedEvent
		if decode(event, data, &del) {
			c.ApplyTaskDeleted(del.TaskID)
		}
	case realtime.EventListCreated:
		var list domain.List
		if decode(event, data, &list) {
			c.ApplyListCreated(list)
		}
	case realtime.EventListUpdated:
		var list domain.List
		if decode(event, data, &list) {
			c.ApplyListUpdated(list)
		}
	case realtime.EventListDeleted:
		var del deletedEvent
		if decode(event, data, &del) {
			c.ApplyListDeleted(del.ListID)
		}
	case realtime.EventBoardUpdated:
		var board domain.Board
		if decode(event, data, &board) {
			c.ApplyBoardUpdated(board)
		}
	}
}

func decode(event string, data json.RawMessage, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		log.Debug().Err(err).Str("event", event).Msg("reconcile: undecodable payload")
		return false
	}
	return true
}
