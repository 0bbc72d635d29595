package game

import (
	"fmt"
	"testing"
	"time"

	"github.com/nico/impostor-party-server/internal/domain"
	"github.com/nico/impostor-party-server/internal/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRoom builds a room with n players. ids[0] is the admin.
func testRoom(t *testing.T, n int) (*Room, []string) {
	t.Helper()

	draw := WordDraw{Ref: "word-ref-1", Text: "banana", Category: "fruit"}
	r, admin := newRoom("AB12CD", "p0", draw, time.Now())

	ids := []string{admin.ID}
	for i := 1; i < n; i++ {
		view, err := r.Join(fmt.Sprintf("p%d", i))
		require.NoError(t, err)
		ids = append(ids, view.PlayerID)
	}
	return r, ids
}

// voteAll opens a voting phase and casts the given votes in order.
func voteAll(t *testing.T, r *Room, votes map[string]string) *OutcomeReport {
	t.Helper()

	var report *OutcomeReport
	for voter, target := range votes {
		rep, err := r.CastVote(voter, target)
		require.NoError(t, err)
		if rep != nil {
			report = rep
		}
	}
	return report
}

func TestJoin(t *testing.T) {
	t.Run("BlankNameRejected", func(t *testing.T) {
		r, _ := testRoom(t, 1)
		_, err := r.Join("")
		assert.ErrorIs(t, err, domain.ErrInvalidName)
	})

	t.Run("MidRoundJoinerSeesRealWord", func(t *testing.T) {
		r, _ := testRoom(t, 1)
		view, err := r.Join("newcomer")
		require.NoError(t, err)
		assert.Equal(t, "banana", view.Word)
		assert.False(t, view.IsImpostor)
		assert.Equal(t, 1, view.Round)
	})
}

func TestCallVote(t *testing.T) {
	t.Run("ResetsVoteState", func(t *testing.T) {
		r, ids := testRoom(t, 3)

		require.NoError(t, r.CallVote(ids[1]))

		snap := r.Snapshot(ids[0])
		assert.Equal(t, domain.RoomStatusVoting, snap.Status)
		assert.Equal(t, 3, snap.VotersRemaining)
		assert.Empty(t, snap.VotesTally)
	})

	t.Run("UnknownCaller", func(t *testing.T) {
		r, _ := testRoom(t, 2)
		assert.ErrorIs(t, r.CallVote("nobody"), domain.ErrPlayerNotFound)
	})

	t.Run("DeadCallerForbidden", func(t *testing.T) {
		r, ids := testRoom(t, 3)
		r.players[ids[2]].IsAlive = false
		assert.ErrorIs(t, r.CallVote(ids[2]), domain.ErrPlayerDead)
	})

	t.Run("AlreadyVotingConflict", func(t *testing.T) {
		r, ids := testRoom(t, 3)
		require.NoError(t, r.CallVote(ids[0]))
		assert.ErrorIs(t, r.CallVote(ids[1]), domain.ErrWrongPhase)
	})

	t.Run("ExcludesDeadFromVoterCount", func(t *testing.T) {
		r, ids := testRoom(t, 4)
		r.players[ids[3]].IsAlive = false

		require.NoError(t, r.CallVote(ids[0]))
		assert.Equal(t, 3, r.Snapshot(ids[0]).VotersRemaining)
	})
}

func TestCastVote(t *testing.T) {
	t.Run("OutsideVotingPhase", func(t *testing.T) {
		r, ids := testRoom(t, 3)
		_, err := r.CastVote(ids[0], ids[1])
		assert.ErrorIs(t, err, domain.ErrWrongPhase)
	})

	t.Run("SelfVoteRejected", func(t *testing.T) {
		r, ids := testRoom(t, 3)
		require.NoError(t, r.CallVote(ids[0]))
		_, err := r.CastVote(ids[0], ids[0])
		assert.ErrorIs(t, err, domain.ErrInvalidTarget)
	})

	t.Run("UnknownTargetRejected", func(t *testing.T) {
		r, ids := testRoom(t, 3)
		require.NoError(t, r.CallVote(ids[0]))
		_, err := r.CastVote(ids[0], "nobody")
		assert.ErrorIs(t, err, domain.ErrInvalidTarget)
	})

	t.Run("DoubleVoteRejectedWithoutChangingTally", func(t *testing.T) {
		r, ids := testRoom(t, 3)
		require.NoError(t, r.CallVote(ids[0]))

		_, err := r.CastVote(ids[0], ids[1])
		require.NoError(t, err)

		_, err = r.CastVote(ids[0], ids[2])
		assert.ErrorIs(t, err, domain.ErrAlreadyVoted)

		snap := r.Snapshot(ids[0])
		assert.Equal(t, map[string]int{ids[1]: 1}, snap.VotesTally)
		assert.Equal(t, 2, snap.VotersRemaining)
	})

	t.Run("MidPhaseJoinerExtendsTheTally", func(t *testing.T) {
		r, ids := testRoom(t, 3)
		r.impostorID = ids[2]
		require.NoError(t, r.CallVote(ids[0]))
		require.Equal(t, 3, r.Snapshot(ids[0]).VotersRemaining)

		view, err := r.Join("latecomer")
		require.NoError(t, err)
		require.Equal(t, 4, r.Snapshot(ids[0]).VotersRemaining)

		// Three of four vote, including the joiner: the tally must keep
		// waiting for the last alive player.
		_, err = r.CastVote(ids[1], ids[2])
		require.NoError(t, err)
		_, err = r.CastVote(ids[2], ids[1])
		require.NoError(t, err)
		_, err = r.CastVote(view.PlayerID, ids[2])
		require.NoError(t, err)

		snap := r.Snapshot(ids[0])
		assert.Equal(t, domain.RoomStatusVoting, snap.Status)
		assert.Equal(t, 1, snap.VotersRemaining)

		_, err = r.CastVote(ids[0], ids[2])
		require.NoError(t, err)
		assert.Equal(t, domain.RoomStatusResults, r.Snapshot(ids[0]).Status)
	})

	t.Run("VotersRemainingTracksAliveNotVoted", func(t *testing.T) {
		r, ids := testRoom(t, 4)
		require.NoError(t, r.CallVote(ids[0]))

		for i, voter := range ids[:3] {
			_, err := r.CastVote(voter, ids[(i+1)%4])
			require.NoError(t, err)
			assert.Equal(t, 4-(i+1), r.Snapshot(voter).VotersRemaining)
		}
	})
}

func TestVoteResolution(t *testing.T) {
	t.Run("MajorityEliminates", func(t *testing.T) {
		// 5 alive, votes {B:3, A:2}: threshold ceil(5/2)=3, B goes.
		r, ids := testRoom(t, 5)
		r.impostorID = ids[4]
		require.NoError(t, r.CallVote(ids[0]))

		report := voteAll(t, r, map[string]string{
			ids[0]: ids[1],
			ids[2]: ids[1],
			ids[3]: ids[1],
			ids[4]: ids[0],
			ids[1]: ids[0],
		})

		assert.Nil(t, report)
		snap := r.Snapshot(ids[0])
		assert.Equal(t, domain.RoomStatusResults, snap.Status)
		assert.Equal(t, ids[1], snap.EliminatedPlayerID)
		assert.Equal(t, domain.WinnerNone, snap.Winner)
		assert.False(t, r.players[ids[1]].IsAlive)
	})

	t.Run("TieEliminatesNobody", func(t *testing.T) {
		// 4 alive, votes {A:2, B:2}: tie, round continues.
		r, ids := testRoom(t, 4)
		r.impostorID = ids[3]
		require.NoError(t, r.CallVote(ids[0]))

		report := voteAll(t, r, map[string]string{
			ids[0]: ids[1],
			ids[2]: ids[1],
			ids[1]: ids[0],
			ids[3]: ids[0],
		})

		assert.Nil(t, report)
		snap := r.Snapshot(ids[0])
		assert.Equal(t, domain.RoomStatusResults, snap.Status)
		assert.Empty(t, snap.EliminatedPlayerID)
		for _, id := range ids {
			assert.True(t, r.players[id].IsAlive)
		}
	})

	t.Run("BelowThresholdEliminatesNobody", func(t *testing.T) {
		// 5 alive, top count 2 < ceil(5/2)=3.
		r, ids := testRoom(t, 5)
		r.impostorID = ids[4]
		require.NoError(t, r.CallVote(ids[0]))

		report := voteAll(t, r, map[string]string{
			ids[0]: ids[1],
			ids[2]: ids[1],
			ids[1]: ids[3],
			ids[3]: ids[0],
			ids[4]: ids[2],
		})

		assert.Nil(t, report)
		assert.Empty(t, r.Snapshot(ids[0]).EliminatedPlayerID)
	})

	t.Run("ImpostorEliminatedMeansPlayersWin", func(t *testing.T) {
		r, ids := testRoom(t, 4)
		r.impostorID = ids[1]
		require.NoError(t, r.CallVote(ids[0]))

		report := voteAll(t, r, map[string]string{
			ids[0]: ids[1],
			ids[2]: ids[1],
			ids[3]: ids[1],
			ids[1]: ids[0],
		})

		require.NotNil(t, report)
		assert.Equal(t, selector.OutcomePlayersWon, report.Outcome)
		assert.Equal(t, "word-ref-1", report.Ref)

		snap := r.Snapshot(ids[0])
		assert.Equal(t, domain.WinnerPlayers, snap.Winner)
		assert.Equal(t, domain.WinReasonImpostorEliminated, snap.WinReason)
		// The impostor is voted out, not killed: the round is simply over.
		assert.Equal(t, ids[1], snap.EliminatedPlayerID)
	})

	t.Run("FinalTwoRuleGivesImpostorTheWin", func(t *testing.T) {
		// 3 alive, a non-impostor is eliminated, 2 survivors remain with the
		// impostor among them.
		r, ids := testRoom(t, 3)
		r.impostorID = ids[2]
		require.NoError(t, r.CallVote(ids[0]))

		report := voteAll(t, r, map[string]string{
			ids[0]: ids[1],
			ids[2]: ids[1],
			ids[1]: ids[0],
		})

		require.NotNil(t, report)
		assert.Equal(t, selector.OutcomeImpostorWon, report.Outcome)

		snap := r.Snapshot(ids[0])
		assert.Equal(t, domain.WinnerImpostor, snap.Winner)
		assert.Equal(t, domain.WinReasonImpostorSurvived, snap.WinReason)
	})
}

func TestContinue(t *testing.T) {
	// Drives a room into a non-terminal RESULTS state: 5 players, one
	// non-impostor eliminated, 4 alive remain.
	setup := func(t *testing.T) (*Room, []string) {
		r, ids := testRoom(t, 5)
		r.impostorID = ids[4]
		require.NoError(t, r.CallVote(ids[0]))
		voteAll(t, r, map[string]string{
			ids[0]: ids[1],
			ids[2]: ids[1],
			ids[3]: ids[1],
			ids[4]: ids[0],
			ids[1]: ids[0],
		})
		require.Equal(t, domain.RoomStatusResults, r.Snapshot(ids[0]).Status)
		return r, ids
	}

	t.Run("AdminResumesSameRound", func(t *testing.T) {
		r, ids := setup(t)
		round := r.Snapshot(ids[0]).Round
		impostor := r.impostorID

		require.NoError(t, r.Continue(ids[0]))

		snap := r.Snapshot(ids[0])
		assert.Equal(t, domain.RoomStatusInGame, snap.Status)
		assert.Equal(t, round, snap.Round)
		assert.Equal(t, impostor, r.impostorID)
		assert.Empty(t, snap.EliminatedPlayerID)
		assert.Empty(t, snap.VotesTally)
		// The eliminated player stays dead.
		assert.False(t, r.players[ids[1]].IsAlive)
	})

	t.Run("NonAdminForbidden", func(t *testing.T) {
		r, ids := setup(t)
		assert.ErrorIs(t, r.Continue(ids[2]), domain.ErrNotAdmin)
	})

	t.Run("NotInResultsConflict", func(t *testing.T) {
		r, ids := testRoom(t, 3)
		assert.ErrorIs(t, r.Continue(ids[0]), domain.ErrWrongPhase)
	})

	t.Run("TerminalRoundConflict", func(t *testing.T) {
		r, ids := testRoom(t, 3)
		r.impostorID = ids[2]
		require.NoError(t, r.CallVote(ids[0]))
		voteAll(t, r, map[string]string{
			ids[0]: ids[2],
			ids[1]: ids[2],
			ids[2]: ids[0],
		})
		require.Equal(t, domain.WinnerPlayers, r.Snapshot(ids[0]).Winner)

		assert.ErrorIs(t, r.Continue(ids[0]), domain.ErrWrongPhase)
	})
}

func TestSnapshotMasking(t *testing.T) {
	r, ids := testRoom(t, 3)
	r.impostorID = ids[1]

	assert.Equal(t, "banana", r.Snapshot(ids[0]).Word)
	assert.Equal(t, domain.MaskedWord, r.Snapshot(ids[1]).Word)
	assert.Equal(t, domain.MaskedWord, r.Snapshot("").Word)
	assert.Equal(t, domain.MaskedWord, r.Snapshot("stranger").Word)

	assert.True(t, r.Snapshot(ids[0]).IsAdmin)
	assert.False(t, r.Snapshot(ids[1]).IsAdmin)
}

func TestClose(t *testing.T) {
	t.Run("ReportsAbandonedRound", func(t *testing.T) {
		r, _ := testRoom(t, 2)
		report := r.close()
		require.NotNil(t, report)
		assert.Equal(t, selector.OutcomeAbandoned, report.Outcome)
		assert.Equal(t, "word-ref-1", report.Ref)
	})

	t.Run("NoDoubleReportAfterTerminalResult", func(t *testing.T) {
		r, ids := testRoom(t, 3)
		r.impostorID = ids[2]
		require.NoError(t, r.CallVote(ids[0]))
		voteAll(t, r, map[string]string{
			ids[0]: ids[2],
			ids[1]: ids[2],
			ids[2]: ids[0],
		})

		assert.Nil(t, r.close())
	})
}
