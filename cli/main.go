// Package main provides a CLI that watches call events and administers live
// calls of a running router.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/xiaot623/gogo/yemot-router/internal/domain"
)

// Client talks to the router admin API.
type Client struct {
	baseURL string
	http    *http.Client
	conn    *websocket.Conn
	done    chan struct{}
}

// NewClient creates a client for the router at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		done:    make(chan struct{}),
	}
}

// Watch connects to the event stream, restricted to callID when set.
func (c *Client) Watch(callID string) error {
	u, err := url.Parse(c.baseURL + "/v1/events")
	if err != nil {
		return fmt.Errorf("parse address: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	if callID != "" {
		u.RawQuery = url.Values{"call_id": {callID}}.Encode()
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	c.conn = conn
	return nil
}

// Close closes the event stream.
func (c *Client) Close() error {
	close(c.done)
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// ReadEvents prints events until the stream closes.
func (c *Client) ReadEvents() {
	for {
		select {
		case <-c.done:
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					log.Printf("Read error: %v", err)
				}
				return
			}

			var ev domain.Event
			if err := json.Unmarshal(data, &ev); err != nil {
				log.Printf("Unmarshal error: %v", err)
				continue
			}
			fmt.Printf("\n%s\n> ", formatEvent(ev))
		}
	}
}

func formatEvent(ev domain.Event) string {
	ts := time.UnixMilli(ev.Ts).Format("15:04:05")
	line := fmt.Sprintf("[%s] %-13s %s status=%s", ts, ev.Type, ev.CallID, ev.Call.Status)
	if ev.Call.PendingName != "" {
		line += " waiting=" + ev.Call.PendingName
	}
	if len(ev.Call.Values) > 0 {
		vals := make([]string, 0, len(ev.Call.Values))
		for _, v := range ev.Call.Values {
			vals = append(vals, v.Name+"="+v.Value)
		}
		line += " values=" + strings.Join(vals, ",")
	}
	if ev.Reason != "" {
		line += " reason=" + string(ev.Reason)
	}
	if ev.Error != "" {
		line += " error=" + ev.Error
	}
	return line
}

// ListCalls prints the live calls.
func (c *Client) ListCalls() error {
	body, err := c.do(http.MethodGet, "/v1/calls")
	if err != nil {
		return err
	}
	var resp struct {
		Calls []domain.CallInfo `json:"calls"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("unmarshal calls: %w", err)
	}
	if len(resp.Calls) == 0 {
		fmt.Println("No live calls")
		return nil
	}
	for _, call := range resp.Calls {
		fmt.Printf("%s  %-15s %-14s phone=%s since=%s\n",
			call.CallID, call.Status, call.Path, call.Identity.Phone, call.StartedAt.Format("15:04:05"))
	}
	return nil
}

// DeleteCall ends a live call.
func (c *Client) DeleteCall(callID string) error {
	body, err := c.do(http.MethodDelete, "/v1/calls/"+url.PathEscape(callID))
	if err != nil {
		return err
	}
	var resp struct {
		Existed bool `json:"existed"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("unmarshal delete: %w", err)
	}
	if resp.Existed {
		fmt.Printf("Call %s deleted\n", callID)
	} else {
		fmt.Printf("Call %s was not live\n", callID)
	}
	return nil
}

func (c *Client) do(method, path string) ([]byte, error) {
	req, err := http.NewRequest(method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func main() {
	addr := flag.String("addr", "http://localhost:9770", "Router address")
	callID := flag.String("call", "", "Only watch events of this call")
	flag.Parse()

	log.SetFlags(log.Ltime)

	client := NewClient(*addr)
	fmt.Printf("Connecting to %s...\n", *addr)
	if err := client.Watch(*callID); err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	fmt.Println("Watching call events.")
	fmt.Println("Commands: /calls, /delete <call_id>, /quit")
	fmt.Println()

	// Start reading events in background
	go client.ReadEvents()

	// Handle Ctrl+C
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		select {
		case <-interrupt:
			fmt.Println("\nInterrupted")
			return
		default:
			if !scanner.Scan() {
				return
			}

			fields := strings.Fields(scanner.Text())
			if len(fields) == 0 {
				continue
			}

			var err error
			switch fields[0] {
			case "/quit":
				fmt.Println("Bye!")
				return
			case "/calls":
				err = client.ListCalls()
			case "/delete":
				if len(fields) != 2 {
					fmt.Println("Usage: /delete <call_id>")
					continue
				}
				err = client.DeleteCall(fields[1])
			default:
				fmt.Printf("Unknown command: %s\n", fields[0])
			}
			if err != nil {
				log.Printf("Error: %v", err)
			}
		}
	}
}
