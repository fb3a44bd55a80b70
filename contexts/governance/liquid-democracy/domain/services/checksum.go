package services

import (
	"crypto/hmac"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Hasher derives the anonymous identifiers of the voting protocol. The
// RightToVote id and the voter-token hash use separate secrets, so a token
// hash never equals or reveals the RightToVote it is linked to.
type Hasher struct {
	rightToVoteSecret []byte
	voterTokenSecret  []byte
}

func NewHasher(rightToVoteSecret string, voterTokenSecret string) Hasher {
	return Hasher{
		rightToVoteSecret: []byte(rightToVoteSecret),
		voterTokenSecret:  []byte(voterTokenSecret),
	}
}

// RightToVoteID is the one-way checksum identifying a voter's RightToVote.
func (h Hasher) RightToVoteID(userID string) string {
	return keyedSum(h.rightToVoteSecret, "right_to_vote", strings.TrimSpace(userID))
}

// VoterTokenHash binds a plain token to one poll. The same plain token yields
// a different hash for every other poll.
func (h Hasher) VoterTokenHash(plainToken string, pollID string) string {
	return keyedSum(h.voterTokenSecret, "voter_token", plainToken, strings.TrimSpace(pollID))
}

// BallotChecksum fingerprints the ranked preference of a ballot. Level is
// not part of it.
func BallotChecksum(pollID string, rightToVoteID string, voteOrder []string) string {
	digest := sha3.New256()
	writeFields(digest, append([]string{"ballot", pollID, rightToVoteID}, voteOrder...)...)
	return hex.EncodeToString(digest.Sum(nil))
}

func keyedSum(secret []byte, fields ...string) string {
	mac := hmac.New(sha3.New256, secret)
	writeFields(mac, fields...)
	return hex.EncodeToString(mac.Sum(nil))
}

// writeFields length-prefixes every field so ("ab","c") and ("a","bc") hash
// differently.
func writeFields(h hash.Hash, fields ...string) {
	for _, field := range fields {
		fmt.Fprintf(h, "%d:%s;", len(field), field)
	}
}
