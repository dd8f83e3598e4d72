package game

import (
	"slices"

	"github.com/aaronzipp/bunker/internal/random"
)

// TallyResult represents the outcome of vote counting
type TallyResult struct {
	Eliminated string
	Counts     map[string]int
	Tied       []string // every target at the maximum, sorted
}

// IsTie reports whether a random pick decided the result
func (r *TallyResult) IsTie() bool {
	return len(r.Tied) > 1
}

// ResolveTally counts votes (voterID -> targetID) and picks the target with
// the most votes. Ties at the maximum are broken uniformly at random.
func ResolveTally(votes map[string]string, src random.Source) (*TallyResult, error) {
	if len(votes) == 0 {
		return nil, ErrNoVotes
	}

	voteCount := make(map[string]int)
	for _, votedFor := range votes {
		voteCount[votedFor]++
	}

	maxVotes := 0
	var playersWithMaxVotes []string
	for pID, count := range voteCount {
		if count > maxVotes {
			maxVotes = count
			playersWithMaxVotes = []string{pID}
		} else if count == maxVotes {
			playersWithMaxVotes = append(playersWithMaxVotes, pID)
		}
	}
	// map order is random; sort so a seeded source replays the same pick
	slices.Sort(playersWithMaxVotes)

	result := &TallyResult{
		Counts: voteCount,
		Tied:   playersWithMaxVotes,
	}
	if len(playersWithMaxVotes) == 1 {
		result.Eliminated = playersWithMaxVotes[0]
	} else {
		result.Eliminated = random.Pick(src, playersWithMaxVotes)
	}
	return result, nil
}
