package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type authResponse struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}

func main() {
	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	base := flag.String("base", "http://127.0.0.1:8080", "server base url")
	flag.Parse()

	suffix := uuid.NewString()[:8]
	tokenA := signup(*base, "smokeA", "smoke-a-"+suffix+"@example.com")
	tokenB := signup(*base, "smokeB", "smoke-b-"+suffix+"@example.com")

	connA := dial(*base, tokenA)
	defer connA.Close()
	connB := dial(*base, tokenB)
	defer connB.Close()

	title := "smoke " + suffix
	post(*base+"/task/newtask", tokenA, map[string]string{"title": title, "description": "created by ws_smoke"}, nil)

	_ = connA.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, msg, err := connA.ReadMessage()
	if err != nil {
		log.Fatalf("A read event: %v", err)
	}
	log.Printf("A got: %s", string(msg))

	_ = connB.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	if _, msg, err := connB.ReadMessage(); err == nil {
		log.Fatalf("B received another user's event: %s", string(msg))
	}

	log.Println("smoke test finished")
}

func signup(base, name, email string) string {
	var res authResponse
	post(base+"/user/signup", "", map[string]string{"name": name, "email": email, "password": "smoke-password"}, &res)
	if res.Token == "" {
		log.Fatalf("signup %s: no token", email)
	}
	return res.Token
}

func dial(base, token string) *websocket.Conn {
	u, err := url.Parse(base)
	if err != nil {
		log.Fatalf("parse base: %v", err)
	}
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	u.Path = "/ws"

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}

	// drain the ready handshake
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, msg, err := conn.ReadMessage(); err != nil || !bytes.Contains(msg, []byte(`"ready"`)) {
		log.Fatalf("expected ready, got %s err=%v", string(msg), err)
	}
	return conn
}

func post(endpoint, token string, body any, out any) {
	b, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		log.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("POST %s: %v", endpoint, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		var e map[string]string
		_ = json.NewDecoder(res.Body).Decode(&e)
		log.Fatalf("POST %s: %d %v", endpoint, res.StatusCode, e)
	}
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			log.Fatalf("decode %s: %v", endpoint, err)
		}
	}
}
