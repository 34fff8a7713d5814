// Package main runs a demo WebSocket client for solve events.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	host := flag.String("host", "localhost:"+port, "API host:port")
	dataset := flag.String("dataset", "01", "dataset to solve")
	algorithm := flag.String("algorithm", "dp", "algorithm to solve with")
	token := flag.String("token", "", "bearer token (dev mode: subject:role)")
	flag.Parse()

	log, _ := zap.NewDevelopment()
	defer func() { _ = log.Sync() }()
	base := "http://" + *host

	// Connect WS
	q := url.Values{}
	if *token != "" {
		q.Set("access_token", *token)
	}
	u := url.URL{Scheme: "ws", Host: *host, Path: "/v1/ws", RawQuery: q.Encode()}
	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial", zap.Error(err))
	}
	defer func() { _ = c.Close() }()

	if err := c.WriteJSON(wsMessage{Type: "connection_init"}); err != nil {
		log.Fatal("connection_init", zap.Error(err))
	}
	pl, _ := json.Marshal(map[string]any{
		"query":     "subscription($datasetId: ID!) { solveCompleted(datasetId: $datasetId) }",
		"variables": map[string]any{"datasetId": *dataset},
	})
	if err := c.WriteJSON(wsMessage{Type: "subscribe", ID: "1", Payload: pl}); err != nil {
		log.Fatal("subscribe", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var m wsMessage
			if err := c.ReadJSON(&m); err != nil {
				log.Info("read", zap.Error(err))
				return
			}
			log.Info("WS <-", zap.String("type", m.Type), zap.ByteString("payload", m.Payload))
		}
	}()

	// Trigger a solve event
	time.Sleep(500 * time.Millisecond)
	body := fmt.Sprintf(`{"datasetId":%q,"algorithm":%q}`, *dataset, *algorithm)
	req, _ := http.NewRequest(http.MethodPost, base+"/v1/solve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if *token != "" {
		req.Header.Set("Authorization", "Bearer "+*token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal("solve", zap.Error(err))
	}
	_ = resp.Body.Close()
	log.Info("solve requested", zap.Int("status", resp.StatusCode))

	// Wait briefly to receive a few messages
	select {
	case <-time.After(2 * time.Second):
	case <-done:
	}
}
