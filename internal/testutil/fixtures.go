package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/nico/impostor-party-server/internal/domain"
	"gorm.io/gorm"
)

// SeedWords inserts active words with the given weights into a category.
func SeedWords(t *testing.T, db *gorm.DB, category string, weights map[string]int) []*domain.Word {
	t.Helper()

	words := make([]*domain.Word, 0, len(weights))
	for text, weight := range weights {
		word := &domain.Word{
			ID:       uuid.New(),
			Text:     text,
			Category: category,
			Weight:   weight,
			Active:   true,
		}
		if err := db.Create(word).Error; err != nil {
			t.Fatalf("failed to seed word %q: %v", text, err)
		}
		words = append(words, word)
	}
	return words
}

// SeedTheme inserts a theme whose items all start at the default weight.
func SeedTheme(t *testing.T, db *gorm.DB, name string, labels []string) *domain.ThemeMode {
	t.Helper()

	items := make([]domain.ThemeItem, len(labels))
	for i, label := range labels {
		items[i] = domain.ThemeItem{Label: label, Weight: domain.DefaultWeight, Active: true}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		t.Fatalf("failed to marshal theme items: %v", err)
	}

	theme := &domain.ThemeMode{
		ID:     uuid.New(),
		Name:   name,
		Items:  raw,
		Active: true,
	}
	if err := db.Create(theme).Error; err != nil {
		t.Fatalf("failed to seed theme %q: %v", name, err)
	}
	return theme
}

// PlayerSession is one authenticated player created through the API.
type PlayerSession struct {
	PlayerID string
	Name     string
	Token    string
}

// CreateRoomResponse mirrors the create-room API payload.
type CreateRoomResponse struct {
	RoomID   string `json:"roomId"`
	Word     string `json:"word"`
	Category string `json:"category"`
	Round    int    `json:"round"`
	PlayerID string `json:"playerId"`
	Token    string `json:"token"`
}

// CreateRoomViaAPI creates a room and returns its code plus the admin session.
func CreateRoomViaAPI(t *testing.T, ts *TestServer, adminName string) (string, PlayerSession) {
	t.Helper()

	resp := PostJSON(t, ts, "/rooms", "", map[string]string{"adminName": adminName})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create room: unexpected status %d", resp.StatusCode)
	}

	var body CreateRoomResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("create room: decode response: %v", err)
	}
	return body.RoomID, PlayerSession{PlayerID: body.PlayerID, Name: adminName, Token: body.Token}
}

// JoinRoomResponse mirrors the join API payload.
type JoinRoomResponse struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Word       string `json:"word"`
	IsImpostor bool   `json:"isImpostor"`
	Round      int    `json:"round"`
	Token      string `json:"token"`
}

// JoinRoomViaAPI joins an existing room and returns the player session.
func JoinRoomViaAPI(t *testing.T, ts *TestServer, code, playerName string) PlayerSession {
	t.Helper()

	resp := PostJSON(t, ts, fmt.Sprintf("/rooms/%s/join", code), "", map[string]string{"playerName": playerName})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join room: unexpected status %d", resp.StatusCode)
	}

	var body JoinRoomResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("join room: decode response: %v", err)
	}
	return PlayerSession{PlayerID: body.PlayerID, Name: playerName, Token: body.Token}
}

// PostJSON sends an authenticated POST with a JSON body.
func PostJSON(t *testing.T, ts *TestServer, path, token string, body any) *http.Response {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, ts.APIURL(path), bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("send request: %v", err)
	}
	return resp
}

// GetJSON sends an authenticated GET and decodes the JSON response into out.
func GetJSON(t *testing.T, ts *TestServer, path, token string, out any) int {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.APIURL(path), nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("send request: %v", err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

// AdminRequest sends a request with the operator's basic-auth credentials.
func AdminRequest(t *testing.T, ts *TestServer, method, path string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.APIURL(path), reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("admin", AdminPassword)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("send request: %v", err)
	}
	return resp
}
