// Command boardwatch follows one board live from a terminal. It fetches the
// board tree over the REST API, joins the board's socket room, and merges
// relayed mutation events into a local cache, printing the tree whenever it
// changes.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/boardpulse/boardpulse/internal/domain"
	"github.com/boardpulse/boardpulse/internal/realtime"
	"github.com/boardpulse/boardpulse/internal/reconcile"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "server base URL")
	boardID := flag.String("board", "", "board id to watch")
	token := flag.String("token", "", "access token for the REST API")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if *boardID == "" {
		log.Fatal().Msg("-board is required")
	}
	if _, err := uuid.Parse(*boardID); err != nil {
		log.Fatal().Str("board", *boardID).Msg("-board must be a UUID")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := watch(ctx, *serverURL, *boardID, *token); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("watch failed")
	}
}

func watch(ctx context.Context, serverURL, boardID, token string) error {
	cache := reconcile.NewCache()
	if err := prime(ctx, cache, serverURL, boardID, token); err != nil {
		return err
	}
	render(cache)

	wsURL := strings.Replace(serverURL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.CloseNow()

	join := realtime.Envelope{Event: realtime.EventJoinBoard, Data: raw(map[string]string{"boardId": boardID})}
	if err := wsjson.Write(ctx, conn, join); err != nil {
		return fmt.Errorf("join board: %w", err)
	}

	for {
		var env realtime.Envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			return fmt.Errorf("read frame: %w", err)
		}

		switch env.Event {
		case realtime.EventTaskCreated, realtime.EventTaskUpdated, realtime.EventTaskMoved,
			realtime.EventTaskDeleted, realtime.EventListCreated, realtime.EventListUpdated,
			realtime.EventListDeleted, realtime.EventBoardUpdated:
			cache.ApplyEvent(env.Event, env.Data)
			render(cache)

		case realtime.EventUserJoined, realtime.EventUserLeft, realtime.EventOnlineUsers:
			log.Info().Str("event", env.Event).RawJSON("data", env.Data).Msg("presence")

		case realtime.EventNewChatMessage:
			var msg domain.Message
			if err := json.Unmarshal(env.Data, &msg); err == nil {
				name := "someone"
				if msg.Sender != nil {
					name = msg.Sender.Name
				}
				log.Info().Str("from", name).Str("content", msg.Content).Msg("chat")
			}
		}
	}
}

// prime loads the initial board tree the same way the web client does: three
// REST calls, then one Load.
func prime(ctx context.Context, cache *reconcile.Cache, serverURL, boardID, token string) error {
	base := serverURL + "/api/v1"

	var board domain.Board
	if err := getJSON(ctx, base+"/boards/"+boardID, token, &board); err != nil {
		return err
	}

	var lists []domain.List
	if err := getJSON(ctx, base+"/boards/"+boardID+"/lists", token, &lists); err != nil {
		return err
	}

	var page struct {
		Tasks []domain.Task `json:"tasks"`
	}
	if err := getJSON(ctx, base+"/boards/"+boardID+"/tasks?limit=500", token, &page); err != nil {
		return err
	}

	cache.Load(board, lists, page.Tasks)
	return nil
}

func getJSON(ctx context.Context, url, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func render(cache *reconcile.Cache) {
	tree := cache.Snapshot()

	var b strings.Builder
	fmt.Fprintf(&b, "== %s (%d tasks)\n", tree.Board.Title, cache.TaskCount())
	for _, node := range tree.Lists {
		fmt.Fprintf(&b, "  [%s]\n", node.List.Title)
		for _, task := range node.Tasks {
			fmt.Fprintf(&b, "    - %s (%s/%s)\n", task.Title, task.Status, task.Priority)
		}
	}
	fmt.Print(b.String())
}

func raw(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
