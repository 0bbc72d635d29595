package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/nico/impostor-party-server/internal/domain"
	"github.com/nico/impostor-party-server/internal/game"
	"github.com/nico/impostor-party-server/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type restartResponse struct {
	NextRoundAt     time.Time `json:"nextRoundAt"`
	Word            string    `json:"word"`
	ImpostorID      string    `json:"impostorId"`
	StarterPlayerID string    `json:"starterPlayerId"`
	StarterName     string    `json:"starterName"`
}

func getState(t *testing.T, ts *testutil.TestServer, code string, player testutil.PlayerSession) game.StateView {
	t.Helper()

	var state game.StateView
	status := testutil.GetJSON(t, ts, "/rooms/"+code, player.Token, &state)
	require.Equal(t, http.StatusOK, status)
	return state
}

// castVote submits one vote and requires it to be accepted.
func castVote(t *testing.T, ts *testutil.TestServer, code string, voter testutil.PlayerSession, targetID string) {
	t.Helper()

	resp := testutil.PostJSON(t, ts, fmt.Sprintf("/rooms/%s/vote", code), voter.Token, map[string]string{"targetId": targetID})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

// gangUpOn has every alive player vote for the target; the target votes for
// the first other alive player instead.
func gangUpOn(t *testing.T, ts *testutil.TestServer, code string, players []testutil.PlayerSession, state game.StateView, targetID string) {
	t.Helper()

	alive := make(map[string]bool)
	for _, p := range state.Players {
		if p.IsAlive {
			alive[p.ID] = true
		}
	}

	var other string
	for _, p := range players {
		if alive[p.PlayerID] && p.PlayerID != targetID {
			other = p.PlayerID
			break
		}
	}
	require.NotEmpty(t, other)

	for _, p := range players {
		if !alive[p.PlayerID] {
			continue
		}
		if p.PlayerID == targetID {
			castVote(t, ts, code, p, other)
		} else {
			castVote(t, ts, code, p, targetID)
		}
	}
}

func TestRoomLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ts := testutil.NewTestServer(t)
	testutil.SeedWords(t, ts.DB.DB, "fruits", map[string]int{"banana": 100})

	code, admin := testutil.CreateRoomViaAPI(t, ts, "alice")
	players := []testutil.PlayerSession{admin}
	for _, name := range []string{"bob", "carol", "dave", "erin"} {
		players = append(players, testutil.JoinRoomViaAPI(t, ts, code, name))
	}

	state := getState(t, ts, code, admin)
	require.Equal(t, 1, state.Round)
	require.Equal(t, 5, state.TotalPlayers)
	require.Equal(t, "banana", state.Word)

	// Restart: the admin gets the picks up front, everyone else only the
	// countdown timestamp until the reveal fires.
	resp := testutil.PostJSON(t, ts, fmt.Sprintf("/rooms/%s/restart", code), admin.Token, nil)
	var restart restartResponse
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&restart))
	resp.Body.Close()
	require.Equal(t, "banana", restart.Word)
	require.NotEmpty(t, restart.ImpostorID)

	require.Eventually(t, func() bool {
		return getState(t, ts, code, admin).Round == 2
	}, 5*time.Second, 20*time.Millisecond)

	// The impostor polls a masked word, everyone else the real one.
	for _, p := range players {
		word := getState(t, ts, code, p).Word
		if p.PlayerID == restart.ImpostorID {
			assert.Equal(t, domain.MaskedWord, word)
		} else {
			assert.Equal(t, "banana", word)
		}
	}

	// Round one: the group wrongly eliminates an innocent player.
	var victim testutil.PlayerSession
	for _, p := range players {
		if p.PlayerID != restart.ImpostorID && p.PlayerID != admin.PlayerID {
			victim = p
			break
		}
	}

	resp = testutil.PostJSON(t, ts, fmt.Sprintf("/rooms/%s/call-vote", code), players[1].Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	state = getState(t, ts, code, admin)
	require.Equal(t, domain.RoomStatusVoting, state.Status)
	require.Equal(t, 5, state.VotersRemaining)

	gangUpOn(t, ts, code, players, state, victim.PlayerID)

	state = getState(t, ts, code, admin)
	assert.Equal(t, domain.RoomStatusResults, state.Status)
	assert.Equal(t, victim.PlayerID, state.EliminatedPlayerID)
	assert.Equal(t, domain.WinnerNone, state.Winner)

	// Admin resumes the round; the eliminated player stays out.
	resp = testutil.PostJSON(t, ts, fmt.Sprintf("/rooms/%s/continue", code), admin.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	state = getState(t, ts, code, admin)
	require.Equal(t, domain.RoomStatusInGame, state.Status)

	// Second vote: the remaining four find the impostor.
	resp = testutil.PostJSON(t, ts, fmt.Sprintf("/rooms/%s/call-vote", code), admin.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	state = getState(t, ts, code, admin)
	require.Equal(t, 4, state.VotersRemaining)

	gangUpOn(t, ts, code, players, state, restart.ImpostorID)

	state = getState(t, ts, code, admin)
	assert.Equal(t, domain.RoomStatusResults, state.Status)
	assert.Equal(t, domain.WinnerPlayers, state.Winner)
	assert.Equal(t, domain.WinReasonImpostorEliminated, state.WinReason)

	// The round's word got its players-won feedback.
	var weight int
	err := ts.DB.DB.Raw("SELECT weight FROM words WHERE text = ?", "banana").Scan(&weight).Error
	require.NoError(t, err)
	assert.Equal(t, 105, weight)
}

func TestRoomEndpointErrors(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ts := testutil.NewTestServer(t)
	testutil.SeedWords(t, ts.DB.DB, "fruits", map[string]int{"banana": 100})

	code, admin := testutil.CreateRoomViaAPI(t, ts, "alice")
	bob := testutil.JoinRoomViaAPI(t, ts, code, "bob")

	t.Run("CreateWithBlankName", func(t *testing.T) {
		resp := testutil.PostJSON(t, ts, "/rooms", "", map[string]string{"adminName": ""})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("CreateWithEmptyPool", func(t *testing.T) {
		resp := testutil.PostJSON(t, ts, "/rooms", "", map[string]string{"adminName": "zoe", "category": "no-such-category"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("JoinUnknownRoom", func(t *testing.T) {
		resp := testutil.PostJSON(t, ts, "/rooms/ZZZZZZ/join", "", map[string]string{"playerName": "zoe"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("StateWithoutToken", func(t *testing.T) {
		status := testutil.GetJSON(t, ts, "/rooms/"+code, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("TokenScopedToItsRoom", func(t *testing.T) {
		otherCode, _ := testutil.CreateRoomViaAPI(t, ts, "mallory")

		// A session from one room opens nothing in another, not even reads.
		status := testutil.GetJSON(t, ts, "/rooms/"+otherCode, bob.Token, nil)
		assert.Equal(t, http.StatusNotFound, status)

		resp := testutil.PostJSON(t, ts, fmt.Sprintf("/rooms/%s/call-vote", otherCode), bob.Token, nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("RestartByNonAdmin", func(t *testing.T) {
		resp := testutil.PostJSON(t, ts, fmt.Sprintf("/rooms/%s/restart", code), bob.Token, nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("VoteOutsideVotingPhase", func(t *testing.T) {
		resp := testutil.PostJSON(t, ts, fmt.Sprintf("/rooms/%s/vote", code), bob.Token, map[string]string{"targetId": admin.PlayerID})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("ContinueOutsideResults", func(t *testing.T) {
		resp := testutil.PostJSON(t, ts, fmt.Sprintf("/rooms/%s/continue", code), admin.Token, nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("DoubleVoteConflict", func(t *testing.T) {
		resp := testutil.PostJSON(t, ts, fmt.Sprintf("/rooms/%s/call-vote", code), admin.Token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		castVote(t, ts, code, bob, admin.PlayerID)

		resp = testutil.PostJSON(t, ts, fmt.Sprintf("/rooms/%s/vote", code), bob.Token, map[string]string{"targetId": admin.PlayerID})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}
