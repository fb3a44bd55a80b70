package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBallotChecksumIsDeterministic(t *testing.T) {
	first := BallotChecksum("poll-1", "rtv-1", []string{"A", "B"})
	second := BallotChecksum("poll-1", "rtv-1", []string{"A", "B"})

	require.Equal(t, first, second)
	require.Len(t, first, 64)
	require.NotEqual(t, first, BallotChecksum("poll-1", "rtv-1", []string{"B", "A"}))
	require.NotEqual(t, first, BallotChecksum("poll-2", "rtv-1", []string{"A", "B"}))
	require.NotEqual(t, first, BallotChecksum("poll-1", "rtv-2", []string{"A", "B"}))
}

func TestBallotChecksumFieldBoundaries(t *testing.T) {
	require.NotEqual(t,
		BallotChecksum("poll", "rtv", []string{"ab", "c"}),
		BallotChecksum("poll", "rtv", []string{"a", "bc"}),
	)
}

func TestHasherSeparatesTokenAndRightToVote(t *testing.T) {
	hasher := NewHasher("rtv-secret", "token-secret")

	rtv := hasher.RightToVoteID("user-1")
	require.Equal(t, rtv, hasher.RightToVoteID(" user-1 "))
	require.NotEqual(t, rtv, hasher.RightToVoteID("user-2"))
	require.NotEqual(t, rtv, NewHasher("other", "token-secret").RightToVoteID("user-1"))

	tokenHash := hasher.VoterTokenHash("plain", "poll-1")
	require.NotEqual(t, tokenHash, hasher.VoterTokenHash("plain", "poll-2"))
	require.NotEqual(t, tokenHash, NewHasher("rtv-secret", "other").VoterTokenHash("plain", "poll-1"))
}
