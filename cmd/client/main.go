package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"github.com/nihalshetty-boop/listri/internal/domain"
)

var (
	addr     = flag.String("addr", "localhost:8080", "chat server address")
	username = flag.String("username", "", "username to connect as")
	room     = flag.String("room", "general", "chat room to join")
)

func main() {
	flag.Parse()

	name := *username
	if name == "" {
		name = promptUsername()
	}

	conn := connectWebSocket(name)
	defer conn.Close()

	// Join the room before anything else so broadcasts reach us.
	join := domain.ChatMessage{
		Type:       domain.MessageTypeJoin,
		ChatRoomID: *room,
		SenderID:   name,
	}
	if err := conn.WriteJSON(join); err != nil {
		log.Fatalf("Failed to join room %s: %v", *room, err)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})
	go readMessages(conn, done)

	fmt.Printf("Joined %s. Write messages (press Enter to send):\n", *room)
	writeMessages(conn, name, interrupt, done)
}

func promptUsername() string {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("Enter your username: ")
	scanner.Scan()
	return scanner.Text()
}

func connectWebSocket(name string) *websocket.Conn {
	u := url.URL{
		Scheme:   "ws",
		Host:     *addr,
		Path:     "/ws",
		RawQuery: "username=" + url.QueryEscape(name),
	}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Failed to connect to chat server: %v", err)
	}
	return conn
}

func readMessages(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		var msg domain.ChatMessage
		if err := conn.ReadJSON(&msg); err != nil {
			log.Printf("Error reading message: %v", err)
			return
		}

		switch msg.Type {
		case domain.MessageTypeJoin:
			fmt.Printf("\n* %s joined %s\n", msg.SenderID, msg.ChatRoomID)
		default:
			fmt.Printf("\n[%s] %s: %s\n", msg.Timestamp.Format("15:04:05"), msg.SenderID, msg.Content)
		}
	}
}

func writeMessages(conn *websocket.Conn, name string, interrupt chan os.Signal, done chan struct{}) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection...")
			err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Printf("Error during close: %v", err)
			}
			return
		default:
			if scanner.Scan() {
				content := scanner.Text()
				if content == "" {
					continue
				}

				msg := domain.ChatMessage{
					Type:       domain.MessageTypeChat,
					ChatRoomID: *room,
					SenderID:   name,
					Content:    content,
				}
				if err := conn.WriteJSON(msg); err != nil {
					log.Printf("Error sending message: %v", err)
					return
				}
			}
		}
	}
}
