package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/annel0/voxel-arena/internal/eventbus"
	"github.com/annel0/voxel-arena/internal/game"
	nats "github.com/nats-io/nats.go"
)

const timeFormat = "2006-01-02T15:04:05Z"

func main() {
	var (
		serverURL  = flag.String("server", nats.DefaultURL, "NATS server URL")
		stream     = flag.String("stream", "GAME_EVENTS", "JetStream stream name")
		command    = flag.String("cmd", "tail", "Command: tail, stats, types")
		eventTypes = flag.String("types", "", "Event types filter (comma-separated)")
		since      = flag.String("since", "1h", "Time duration since now (e.g., 1h, 30m) or RFC3339 time")
		limit      = flag.Int("limit", 100, "Maximum number of events")
		follow     = flag.Bool("follow", false, "Follow new events (like tail -f)")
	)
	flag.Parse()

	if *command == "types" {
		showTypes(os.Stdout)
		return
	}

	nc, err := nats.Connect(*serverURL, nats.Name("event-cli"))
	if err != nil {
		log.Fatalf("❌ Failed to connect to NATS: %v", err)
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		log.Fatalf("❌ JetStream unavailable: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *command {
	case "tail":
		if err := tailEvents(ctx, js, &TailOptions{
			EventTypes: parseStringList(*eventTypes),
			Since:      *since,
			Limit:      *limit,
			Follow:     *follow,
		}); err != nil {
			log.Fatalf("❌ Tail failed: %v", err)
		}

	case "stats":
		if err := showStats(js, *stream, parseStringList(*eventTypes)); err != nil {
			log.Fatalf("❌ Stats failed: %v", err)
		}

	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: tail, stats, types")
		os.Exit(1)
	}
}

type TailOptions struct {
	EventTypes []string
	Since      string
	Limit      int
	Follow     bool
}

// tailEvents выводит события из стрима, начиная с момента since
func tailEvents(ctx context.Context, js nats.JetStreamContext, opts *TailOptions) error {
	fmt.Printf("🎬 Tailing events (limit: %d, follow: %v)\n", opts.Limit, opts.Follow)

	startTime, err := parseSinceTime(opts.Since, time.Now())
	if err != nil {
		return fmt.Errorf("invalid since time: %w", err)
	}

	subject := eventbus.SubjectPrefix + ".*"
	if len(opts.EventTypes) == 1 {
		subject = eventbus.Subject(opts.EventTypes[0])
	}

	sub, err := js.SubscribeSync(subject, nats.OrderedConsumer(), nats.StartTime(startTime))
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	filter := eventbus.Filter{Types: opts.EventTypes}
	eventCount := 0
	for ctx.Err() == nil {
		msg, err := nextMsg(ctx, sub, opts.Follow)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				break
			}
			return fmt.Errorf("stream error: %w", err)
		}

		env, err := decodeEnvelope(msg.Data)
		if err != nil {
			fmt.Printf("⚠️  skip malformed message: %v\n", err)
			continue
		}
		if !matches(env, filter) {
			continue
		}

		printEvent(os.Stdout, env)
		eventCount++

		if !opts.Follow && eventCount >= opts.Limit {
			break
		}
	}

	fmt.Printf("\n📊 Total events: %d\n", eventCount)
	return nil
}

// nextMsg ждёт следующее сообщение. Без follow ожидание ограничено: конец стрима.
func nextMsg(ctx context.Context, sub *nats.Subscription, follow bool) (*nats.Msg, error) {
	if follow {
		return sub.NextMsgWithContext(ctx)
	}
	wctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sub.NextMsgWithContext(wctx)
}

// showStats выводит число сообщений по subject'ам стрима
func showStats(js nats.JetStreamContext, stream string, types []string) error {
	fmt.Println("📊 Event statistics")

	info, err := js.StreamInfo(stream, &nats.StreamInfoRequest{SubjectsFilter: eventbus.SubjectPrefix + ".>"})
	if err != nil {
		return fmt.Errorf("failed to get stream info: %w", err)
	}

	fmt.Printf("Stream: %s\n", info.Config.Name)
	fmt.Printf("Period: %s - %s\n", info.State.FirstTime.Format(timeFormat), info.State.LastTime.Format(timeFormat))
	fmt.Printf("Total events: %d\n", info.State.Msgs)
	fmt.Println("\nBy event type:")
	for _, line := range statsLines(info.State.Subjects, types) {
		fmt.Println(line)
	}
	return nil
}

// statsLines форматирует счётчики subject'ов в отсортированные строки
func statsLines(subjects map[string]uint64, types []string) []string {
	wanted := make(map[string]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}

	lines := make([]string, 0, len(subjects))
	for subj, n := range subjects {
		typ := strings.TrimPrefix(subj, eventbus.SubjectPrefix+".")
		if len(wanted) > 0 && !wanted[typ] {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s: %d events", typ, n))
	}
	sort.Strings(lines)
	return lines
}

// showTypes выводит известные типы игровых событий
func showTypes(w io.Writer) {
	fmt.Fprintln(w, "📋 Available event types")
	for _, t := range []game.EventType{
		game.EventPlayerDamaged,
		game.EventPlayerHealed,
		game.EventEntityHit,
		game.EventEntityDied,
		game.EventPickupCollected,
		game.EventTreasureUnlocked,
		game.EventVictory,
		game.EventDefeat,
	} {
		fmt.Fprintf(w, "  %-18s priority=%d subject=%s\n", t, eventbus.PriorityOf(t), eventbus.Subject(string(t)))
	}
}

func decodeEnvelope(data []byte) (*eventbus.Envelope, error) {
	var env eventbus.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func matches(env *eventbus.Envelope, f eventbus.Filter) bool {
	if len(f.Types) == 0 {
		return true
	}
	for _, t := range f.Types {
		if t == env.EventType {
			return true
		}
	}
	return false
}

// printEvent выводит событие в читаемом формате
func printEvent(w io.Writer, env *eventbus.Envelope) {
	fmt.Fprintf(w, "[%s] %s [%s] %s\n",
		env.Timestamp.Format("15:04:05"),
		env.Source,
		env.EventType,
		env.ID)

	var ev game.Event
	if err := env.Decode(&ev); err != nil {
		return
	}
	switch ev.Type {
	case game.EventPlayerDamaged, game.EventPlayerHealed:
		fmt.Fprintf(w, "  Tick: %d Source: %s Amount: %d Health: %d\n", ev.Tick, ev.Source, ev.Amount, ev.Health)
	case game.EventEntityHit, game.EventEntityDied:
		fmt.Fprintf(w, "  Tick: %d Entity: %s#%d Health: %d At: (%.1f,%.1f,%.1f)\n",
			ev.Tick, ev.Kind, ev.EntityID, ev.Health, ev.Position.X, ev.Position.Y, ev.Position.Z)
	default:
		fmt.Fprintf(w, "  Tick: %d\n", ev.Tick)
	}
}

// parseStringList парсит строку с разделителями-запятыми
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseSinceTime парсит относительное время типа "1h", "30m"
func parseSinceTime(since string, from time.Time) (time.Time, error) {
	if since == "" {
		return from, nil
	}

	duration, err := time.ParseDuration(since)
	if err != nil {
		// Пробуем парсить как абсолютное время
		return time.Parse(timeFormat, since)
	}

	return from.Add(-duration), nil
}
