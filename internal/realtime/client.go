package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time between keepalive pings on an event stream
	keepalivePeriod = 30 * time.Second

	// Time allowed to read the next pong message from a websocket peer
	pongWait = 60 * time.Second

	// Send websocket pings with this period
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from a websocket peer
	maxMessageSize = 512

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Message is an encoded event ready for a transport
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Client is one live connection registered with the hub
type Client struct {
	id          string
	viewer      Viewer
	send        chan Message
	connectedAt time.Time
}

// NewClient creates a client for a viewer
func NewClient(viewer Viewer) *Client {
	return &Client{
		id:          uuid.New().String(),
		viewer:      viewer,
		send:        make(chan Message, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// ID returns the connection id
func (c *Client) ID() string {
	return c.id
}

// Messages returns the channel of outgoing messages; it is closed when the
// client is unregistered or the hub stops
func (c *Client) Messages() <-chan Message {
	return c.send
}
