package ws

// Hub bertanggung jawab untuk:
// menyimpan koneksi client, menerima event antrian dari service,
// dan melakukan broadcast ke seluruh client yang terhubung.

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/c14220110/apotek-antrian-backend/internal/antrian/models"
)

var ErrHubClosed = errors.New("websocket hub closed")

const sendBuffer = 256

// Client mewakili koneksi WebSocket
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan []byte
}

// Hub mengelola semua koneksi client. Map clients hanya disentuh oleh goroutine Run.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	count      atomic.Int64
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.With().Str("component", "ws_hub").Logger(),
	}
}

// Run menjalankan event loop hub sampai ctx selesai. Saat berhenti semua
// client diputus.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for client := range h.clients {
			h.drop(client)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.clients[client] = true
			h.count.Add(1)
			h.log.Debug().Str("client_id", client.ID).Msg("client registered")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.log.Debug().Str("client_id", client.ID).Msg("client unregistered")
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// buffer penuh, client terlalu lambat
					h.log.Warn().Str("client_id", client.ID).Msg("slow client dropped")
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.count.Add(-1)
}

// Publish mengirim event antrian {type, data} ke semua client.
func (h *Hub) Publish(ctx context.Context, ev models.QueueEvent) error {
	msg, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	select {
	case <-h.done:
		return ErrHubClosed
	default:
	}
	select {
	case h.broadcast <- msg:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ClientCount jumlah client yang sedang terhubung.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

func (h *Hub) attach(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
