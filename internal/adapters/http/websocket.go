package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/locationwizard/internal/adapters/nats"
	"github.com/samirrijal/locationwizard/internal/core/usecases"
	"github.com/samirrijal/locationwizard/internal/pkg/metrics"
)

// wsMessage is sent by clients.
//
//	{"action":"lookup","lat":28.61,"lon":77.21,"reverse":false}
//	{"action":"subscribe","zone":"IV"}   // zone optional, "" = all
//	{"action":"unsubscribe","zone":"IV"}
type wsMessage struct {
	Action  string   `json:"action"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Reverse bool     `json:"reverse"`
	Zone    string   `json:"zone"`
}

// wsEnvelope is sent to clients.
type wsEnvelope struct {
	Type  string      `json:"type"` // report | lookup_event | status | error
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

const wsLookupTimeout = 15 * time.Second

// WebSocketHandler answers lookups over the socket and relays lookup
// events published on NATS to subscribed clients.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		logger := slog.Default().With("remote", remoteAddr)
		logger.Debug("ws client connected")

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		writeErr := func(msg string) {
			_ = writeJSON(wsEnvelope{Type: "error", Error: msg})
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				writeErr("invalid JSON")
				continue
			}

			switch m.Action {
			case "lookup":
				if m.Lat == nil || m.Lon == nil {
					writeErr("lat and lon are required")
					continue
				}
				ctx, cancel := context.WithTimeout(context.Background(), wsLookupTimeout)
				report, err := deps.Locations.Describe(ctx, *m.Lat, *m.Lon, usecases.DescribeOptions{Reverse: m.Reverse})
				cancel()
				if err != nil {
					writeErr(err.Error())
					continue
				}
				_ = writeJSON(wsEnvelope{Type: "report", Data: report})

			case "subscribe":
				if deps.NATS == nil {
					writeErr("live events not available")
					continue
				}
				subject := wsSubject(m.Zone)
				if _, exists := subs[subject]; exists {
					_ = writeJSON(wsEnvelope{Type: "status", Data: map[string]string{"status": "already subscribed", "subject": subject}})
					continue
				}
				s, err := deps.NATS.Subscribe(subject, func(msg *nats.Msg) {
					event, err := natsadapter.DecodeLookupEvent(msg)
					if err != nil {
						logger.Debug("ws relay skipped message", "error", err)
						return
					}
					_ = writeJSON(wsEnvelope{Type: "lookup_event", Data: event})
				})
				if err != nil {
					writeErr("subscribe failed: " + err.Error())
					continue
				}
				subs[subject] = s
				_ = writeJSON(wsEnvelope{Type: "status", Data: map[string]string{"status": "subscribed", "subject": subject}})

			case "unsubscribe":
				subject := wsSubject(m.Zone)
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(wsEnvelope{Type: "status", Data: map[string]string{"status": "unsubscribed", "subject": subject}})
				} else {
					writeErr("not subscribed to " + subject)
				}

			default:
				writeErr("unknown action: " + m.Action)
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		logger.Debug("ws client disconnected")
	}
}

func wsSubject(zone string) string {
	if strings.TrimSpace(zone) == "" {
		return natsadapter.LookupSubjects
	}
	return natsadapter.LookupSubject(zone)
}
